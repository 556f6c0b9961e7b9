package backend

import (
	"context"
	"net/http"
	"net/url"
)

// TableauService proxies Tableau server listings through a connection.
type TableauService struct {
	c *Client
}

func (s *TableauService) Workbooks(ctx context.Context, connectionID ID) ([]Workbook, error) {
	return call[[]Workbook](ctx, s.c, http.MethodGet, "/api/v1/tableau/"+connectionID.String()+"/workbooks", nil)
}

func (s *TableauService) Views(ctx context.Context, connectionID ID, workbookID string) ([]View, error) {
	path := "/api/v1/tableau/" + connectionID.String() + "/workbook/" + url.PathEscape(workbookID) + "/views"
	return call[[]View](ctx, s.c, http.MethodGet, path, nil)
}
