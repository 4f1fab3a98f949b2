package mirror

// StarterFiles returns the fixed starter set a new user's filesystem
// document is seeded with.
func StarterFiles() []FileEntry {
	return []FileEntry{
		{
			ID:       "1",
			Name:     "readme.txt",
			Content:  "Welcome to Gemini OS V2.\nBackend: cloud document store.\nYour data is now synced to the cloud.",
			Language: "plaintext",
		},
		{
			ID:       "2",
			Name:     "config.json",
			Content:  "{\n  \"theme\": \"dark\",\n  \"ai_level\": \"max\"\n}",
			Language: "json",
		},
	}
}

// WelcomeMessage returns the fixed first assistant message a new user's
// chat document is seeded with.
func WelcomeMessage() ChatMessage {
	return ChatMessage{
		Role: RoleAssistant,
		Text: "Gateway v2.1 Online. Cloud storage active.",
	}
}
