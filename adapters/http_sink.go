// Package adapters
// Author: momentics <momentics@gmail.com>
//
// HTTP delivery sink posting finalized records to an ingestion endpoint.
// Retry and persistence policy live behind the endpoint; this adapter
// performs one attempt per call and reports the outcome.

package adapters

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/momentics/crashpipe/api"
)

// recordPayload is the wire form of api.Record.
type recordPayload struct {
	Kind           string         `json:"kind"`
	Message        string         `json:"message"`
	StackTrace     string         `json:"stackTrace,omitempty"`
	Inner          *recordPayload `json:"inner,omitempty"`
	WrapperSDKName string         `json:"wrapperSdkName,omitempty"`
}

type attachmentPayload struct {
	Name        string `json:"name,omitempty"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"` // base64 on the wire
}

type trackRequest struct {
	ID          string              `json:"id"`
	Record      *recordPayload      `json:"record"`
	Properties  map[string]string   `json:"properties,omitempty"`
	Attachments []attachmentPayload `json:"attachments,omitempty"`
}

type trackResponse struct {
	ID string `json:"id"`
}

// HTTPSink delivers reports to an HTTP ingestion service.
type HTTPSink struct {
	client  *resty.Client
	baseURL string
	log     *logrus.Entry
}

var _ api.Sink = (*HTTPSink)(nil)

// NewHTTPSink creates a sink for baseURL. apiToken, when non-empty, is
// sent as a bearer token.
func NewHTTPSink(baseURL, apiToken string) *HTTPSink {
	client := resty.New().SetBaseURL(baseURL)
	if apiToken != "" {
		client.SetAuthToken(apiToken)
	}
	return &HTTPSink{
		client:  client,
		baseURL: baseURL,
		log:     logrus.WithField("component", "http-sink"),
	}
}

// TrackException posts one record. The client proposes a report id so
// retried submissions stay deduplicatable server-side; the response id,
// when present, is authoritative.
func (s *HTTPSink) TrackException(record *api.Record, properties map[string]string, attachments []api.Attachment) (string, error) {
	if record == nil {
		return "", api.NewError(api.ErrCodeInvalidInput, "track nil record", api.ErrInvalidInput)
	}
	req := trackRequest{
		ID:          uuid.NewString(),
		Record:      toPayload(record, 0),
		Properties:  properties,
		Attachments: toAttachmentPayloads(attachments),
	}
	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/v1/exceptions")
	if err != nil {
		return "", api.NewError(api.ErrCodeDeliveryFailure, "exception submission failed", err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return "", api.NewError(api.ErrCodeDeliveryFailure,
			fmt.Sprintf("ingestion returned status %d: %s", resp.StatusCode(), resp.Body()), nil)
	}
	var out trackResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil || out.ID == "" {
		return req.ID, nil
	}
	return out.ID, nil
}

// SendErrorAttachments posts attachments for an already-tracked report.
func (s *HTTPSink) SendErrorAttachments(reportID string, attachments []api.Attachment) error {
	if len(attachments) == 0 {
		return nil
	}
	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(toAttachmentPayloads(attachments)).
		Post("/v1/exceptions/" + reportID + "/attachments")
	if err != nil {
		return api.NewError(api.ErrCodeDeliveryFailure, "attachment submission failed", err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return api.NewError(api.ErrCodeDeliveryFailure,
			fmt.Sprintf("ingestion returned status %d: %s", resp.StatusCode(), resp.Body()), nil)
	}
	return nil
}

// BuildHandledErrorReport materializes the handled-error report for a
// delivered submission.
func (s *HTTPSink) BuildHandledErrorReport(reportID string) (*api.Report, error) {
	if reportID == "" {
		return nil, api.NewError(api.ErrCodeInvalidInput, "empty report id", api.ErrInvalidInput)
	}
	return &api.Report{ID: reportID, IsCrash: false, State: api.StateSubmitted}, nil
}

func toPayload(r *api.Record, depth int) *recordPayload {
	if r == nil || depth >= api.MaxChainDepth {
		return nil
	}
	return &recordPayload{
		Kind:           r.Kind,
		Message:        r.Message,
		StackTrace:     r.StackText(),
		Inner:          toPayload(r.Inner, depth+1),
		WrapperSDKName: r.WrapperSDKName,
	}
}

func toAttachmentPayloads(atts []api.Attachment) []attachmentPayload {
	if len(atts) == 0 {
		return nil
	}
	out := make([]attachmentPayload, 0, len(atts))
	for _, a := range atts {
		out = append(out, attachmentPayload{Name: a.Name, ContentType: a.ContentType, Data: a.Payload})
	}
	return out
}
