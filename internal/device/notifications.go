package device

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notification is one entry in the local notification center. The list is
// intentionally ephemeral: it is never synchronized to the document store
// and is regenerated each session.
type Notification struct {
	ID           string
	App          string
	Title        string
	Content      string
	Timestamp    time.Time
	Processed    bool
	Insight      string
	SmartReplies []string
}

// mockPool is the fixed set of simulated incoming notifications.
var mockPool = []Notification{
	{App: "WhatsApp", Title: "Mom", Content: "Are you coming for dinner tonight? I am making lasagna."},
	{App: "Gmail", Title: "AWS Billing", Content: "Alert: Your budget has exceeded the threshold of $50.00."},
	{App: "System", Title: "Battery", Content: "Power saving mode enabled. Background activity restricted."},
	{App: "Calendar", Title: "Meeting", Content: "Sync with product team in 15 minutes."},
}

// NotificationCenter holds the session-local notification list, newest
// first.
type NotificationCenter struct {
	mu    sync.RWMutex
	items []Notification
}

// NewNotificationCenter returns an empty center.
func NewNotificationCenter() *NotificationCenter {
	return &NotificationCenter{}
}

// Simulate prepends a random entry from the mock pool and returns it.
func (c *NotificationCenter) Simulate() Notification {
	n := mockPool[rand.Intn(len(mockPool))]
	n.ID = uuid.NewString()
	n.Timestamp = time.Now()

	c.mu.Lock()
	c.items = append([]Notification{n}, c.items...)
	c.mu.Unlock()
	return n
}

// Push prepends a notification.
func (c *NotificationCenter) Push(n Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}
	c.mu.Lock()
	c.items = append([]Notification{n}, c.items...)
	c.mu.Unlock()
}

// Resolve attaches triage output to the notification with the given id
// and marks it processed. Unknown ids are ignored.
func (c *NotificationCenter) Resolve(id, insight string, replies []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Processed = true
			c.items[i].Insight = insight
			c.items[i].SmartReplies = append([]string(nil), replies...)
			return
		}
	}
}

// List returns a copy of the notifications, newest first.
func (c *NotificationCenter) List() []Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Notification(nil), c.items...)
}

// Len returns the number of notifications.
func (c *NotificationCenter) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Clear empties the list.
func (c *NotificationCenter) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}

// Context renders up to the three newest notifications in the compact
// "[App] content" form fed to the kernel prompt.
func (c *NotificationCenter) Context() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := ""
	for i, n := range c.items {
		if i == 3 {
			break
		}
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("[%s] %s", n.App, n.Content)
	}
	return out
}
