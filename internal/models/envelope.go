package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrUnknownEventType is returned for envelopes whose type is neither
// page_visit nor click.
var ErrUnknownEventType = errors.New("unsupported event type")

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report json names so errors read "page_path is required".
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Envelope is the body posted to the ingestion endpoint.
type Envelope struct {
	Type EventType `json:"type"`
	Data EventData `json:"data"`
}

// EventData is the union of the fields either event kind may carry.
// user_agent is deliberately absent: the server stamps it.
type EventData struct {
	PagePath    string `json:"page_path,omitempty"`
	ButtonID    string `json:"button_id,omitempty"`
	ButtonText  string `json:"button_text,omitempty"`
	Referrer    string `json:"referrer,omitempty"`
	SessionID   string `json:"session_id,omitempty"`
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	UTMTerm     string `json:"utm_term,omitempty"`
	UTMContent  string `json:"utm_content,omitempty"`
}

// Attribution extracts the UTM fields.
func (d EventData) Attribution() Attribution {
	return Attribution{
		Source:   d.UTMSource,
		Medium:   d.UTMMedium,
		Campaign: d.UTMCampaign,
		Term:     d.UTMTerm,
		Content:  d.UTMContent,
	}
}

// WithAttribution returns a copy of d carrying the given UTM fields.
func (d EventData) WithAttribution(a Attribution) EventData {
	d.UTMSource = a.Source
	d.UTMMedium = a.Medium
	d.UTMCampaign = a.Campaign
	d.UTMTerm = a.Term
	d.UTMContent = a.Content
	return d
}

// Event converts the envelope into a validated record. userAgent is
// stamped onto the result regardless of what the client sent.
func (e Envelope) Event(userAgent string) (Event, error) {
	var evt Event
	switch e.Type {
	case EventPageVisit:
		evt = &PageVisit{
			PagePath:    e.Data.PagePath,
			Attribution: e.Data.Attribution(),
			Referrer:    e.Data.Referrer,
			UserAgent:   userAgent,
			SessionID:   e.Data.SessionID,
		}
	case EventClick:
		evt = &ClickEvent{
			ButtonID:    e.Data.ButtonID,
			ButtonText:  e.Data.ButtonText,
			PagePath:    e.Data.PagePath,
			Attribution: e.Data.Attribution(),
			UserAgent:   userAgent,
			SessionID:   e.Data.SessionID,
		}
	case "":
		return nil, errors.New("type is required")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, e.Type)
	}

	if err := validate.Struct(evt); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return nil, formatValidationError(validationErrors[0])
		}
		return nil, err
	}
	return evt, nil
}

// formatValidationError converts validator errors to user-friendly messages
func formatValidationError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "max":
		return fmt.Errorf("%s exceeds maximum length of %s", fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%s is invalid", fe.Field())
	}
}
