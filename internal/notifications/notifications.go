package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/airzone-cloud/internal/device"
	"github.com/thatsimonsguy/airzone-cloud/internal/env"
)

var client *http.Client
var topic string
var baseURL = "https://ntfy.sh"
var initialized bool

// Init initializes the notification client
func Init() {
	if env.Cfg.NtfyTopic == "" {
		log.Warn().Msg("Ntfy topic not configured - notifications disabled")
		return
	}

	client = &http.Client{
		Timeout: 10 * time.Second,
	}
	topic = env.Cfg.NtfyTopic
	initialized = true

	log.Info().
		Str("topic", topic).
		Msg("Ntfy notifications initialized")
}

// Send sends a notification to ntfy.sh
func Send(title, message string) error {
	if !initialized {
		return fmt.Errorf("notifications not initialized")
	}

	url := fmt.Sprintf("%s/%s", baseURL, topic)

	payload := map[string]interface{}{
		"topic":   topic,
		"title":   title,
		"message": message,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy returned non-success status: %d", resp.StatusCode)
	}

	log.Debug().
		Str("title", title).
		Int("status", resp.StatusCode).
		Msg("Notification sent successfully")

	return nil
}

// ProblemWatcher sends one notification each time a device starts reporting
// errors or warnings.
type ProblemWatcher struct {
	send    func(title, message string) error
	problem map[string]bool
}

func NewProblemWatcher() *ProblemWatcher {
	return &ProblemWatcher{send: Send, problem: map[string]bool{}}
}

// Forget drops the state of a device that is no longer reported, so its next
// problems raise a fresh alert.
func (w *ProblemWatcher) Forget(id string) {
	delete(w.problem, id)
}

func (w *ProblemWatcher) Observe(snap map[string]any) {
	id, _ := snap[device.KeyID].(string)
	has, _ := snap[device.KeyProblems].(bool)

	was := w.problem[id]
	w.problem[id] = has
	if !has || was || !initialized {
		return
	}

	name, _ := snap[device.KeyName].(string)
	var details []string
	if errs, ok := snap[device.KeyErrors].([]string); ok {
		details = append(details, "errors: "+strings.Join(errs, ", "))
	}
	if warnings, ok := snap[device.KeyWarnings].([]string); ok {
		details = append(details, "warnings: "+strings.Join(warnings, ", "))
	}

	if err := w.send(fmt.Sprintf("%s reports problems", name), strings.Join(details, "\n")); err != nil {
		log.Warn().Err(err).Str("device", id).Msg("Failed to send problem notification")
	}
}
