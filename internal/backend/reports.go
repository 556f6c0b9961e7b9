package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"
)

type ReportsService struct {
	c *Client
}

func (s *ReportsService) ListByOrganization(ctx context.Context, orgID ID) ([]Report, error) {
	return call[[]Report](ctx, s.c, http.MethodGet, "/api/v1/reports/org/"+orgID.String(), nil)
}

func (s *ReportsService) Get(ctx context.Context, id ID) (Report, error) {
	return call[Report](ctx, s.c, http.MethodGet, "/api/v1/reports/"+id.String(), nil)
}

// APIDetails returns the export URL and secret for a report.
func (s *ReportsService) APIDetails(ctx context.Context, id ID) (ReportAPIDetails, error) {
	return call[ReportAPIDetails](ctx, s.c, http.MethodGet, "/api/v1/reports/"+id.String()+"/api-details", nil)
}

func (s *ReportsService) Create(ctx context.Context, req ReportRequest) (Report, error) {
	return call[Report](ctx, s.c, http.MethodPost, "/api/v1/reports", req)
}

func (s *ReportsService) Update(ctx context.Context, id ID, req ReportRequest) (Report, error) {
	return call[Report](ctx, s.c, http.MethodPatch, "/api/v1/reports/"+id.String(), req)
}

func (s *ReportsService) Delete(ctx context.Context, id ID) error {
	return s.c.do(ctx, http.MethodDelete, "/api/v1/reports/"+id.String(), nil, nil)
}

// ReportFile is a downloaded export.
type ReportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Download calls a report's export URL with its secret. The export URL is
// absolute and not necessarily on the backend host, so no bearer token is
// sent.
func (s *ReportsService) Download(ctx context.Context, apiURL, apiSecret string, params []json.RawMessage) (*ReportFile, error) {
	if params == nil {
		params = []json.RawMessage{}
	}
	b, err := json.Marshal(map[string]any{"reportParameters": params})
	if err != nil {
		return nil, &Error{Message: err.Error(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(b))
	if err != nil {
		return nil, &Error{Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Nexus-Auth", apiSecret)

	resp, err := s.c.http.Do(req)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*maxBodyBytes))
	if err != nil {
		return nil, transportError(ctx, err)
	}
	if resp.StatusCode >= 400 {
		return nil, &Error{
			Status:  resp.StatusCode,
			Payload: body,
			Message: messageFrom(body, resp.StatusCode),
		}
	}

	ext, mimeType := reportFormat(resp.Header.Get("Content-Type"))
	filename := filenameFrom(resp.Header.Get("Content-Disposition"))
	if filename == "" {
		filename = fmt.Sprintf("report_%s.%s", strconv.FormatInt(time.Now().UnixMilli(), 10), ext)
	}

	return &ReportFile{
		Filename:    filename,
		ContentType: mimeType,
		Body:        body,
	}, nil
}

// reportFormat maps a response content type to a file extension and the
// MIME type served back to the browser. PDF is the default.
func reportFormat(contentType string) (ext, mimeType string) {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "csv"):
		return "csv", "text/csv"
	case strings.Contains(ct, "excel"), strings.Contains(ct, "spreadsheet"), strings.Contains(ct, "xlsx"):
		return "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case strings.Contains(ct, "png"):
		return "png", "image/png"
	default:
		return "pdf", "application/pdf"
	}
}

func filenameFrom(disposition string) string {
	if disposition == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := params["filename"]; name != "" {
			return path.Base(name)
		}
	}
	// tolerate unquoted names with spaces that ParseMediaType rejects
	for _, part := range strings.Split(disposition, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && strings.EqualFold(strings.TrimSpace(k), "filename") {
			v = strings.Trim(strings.TrimSpace(v), `"'`)
			if v != "" {
				return path.Base(v)
			}
		}
	}
	return ""
}
