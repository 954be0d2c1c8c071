package remotesvc

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/feeportal/backend/core"
	"github.com/feeportal/backend/core/reminder"
)

// Client calls the hosted send-reminders function.
type Client struct {
	url     string
	key     string
	timeout time.Duration
	http    *rest.Client
}

var _ reminder.RemoteClient = (*Client)(nil)

func NewClient(conf *core.Config) *Client {
	return &Client{
		url:     conf.Remote.SendRemindersURL,
		key:     conf.Remote.Key,
		timeout: conf.Remote.Timeout,
		http:    &rest.Client{HTTPClient: &http.Client{}},
	}
}

// SendReminders posts to the function without a body and decodes its result.
// A non-2xx response is an error carrying the function's own error message when it sent one.
func (c *Client) SendReminders(ctx context.Context) (reminder.RemoteResult, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := rest.Request{
		Method:  rest.Post,
		BaseURL: c.url,
		Headers: map[string]string{
			"Authorization": "Bearer " + c.key,
			"Accept":        "application/json",
		},
	}
	res, err := c.http.SendWithContext(ctx, req)
	if err != nil {
		return reminder.RemoteResult{}, errors.Wrap(err, "calling send-reminders")
	}

	var result reminder.RemoteResult
	decodeErr := json.Unmarshal([]byte(res.Body), &result)
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		if decodeErr == nil && result.Error != "" {
			return reminder.RemoteResult{}, errors.Errorf("send-reminders responded %d: %s", res.StatusCode, result.Error)
		}
		return reminder.RemoteResult{}, errors.Errorf("send-reminders responded %d", res.StatusCode)
	}
	if decodeErr != nil {
		return reminder.RemoteResult{}, errors.Wrap(decodeErr, "decoding send-reminders result")
	}
	return result, nil
}
