// Package roster answers the client grid's list and search queries.
package roster

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dukerupert/homeeasy/internal/model"
)

const (
	DefaultPageSize = 30
	MaxPageSize     = 200
)

// Source is the storage the roster reads from.
type Source interface {
	List(ctx context.Context, offset, limit uint64) ([]model.ClientSummary, error)
	SearchByID(ctx context.Context, id int64) ([]model.ClientSummary, error)
	SearchByName(ctx context.Context, text string) ([]model.ClientSummary, error)
}

// Query carries the grid state for one request: the search box text and
// the current window.
type Query struct {
	Text   string
	Offset int
	Limit  int
}

// Page is one window of the roster. NextOffset is the offset to request for
// "load more" and is only meaningful when HasMore is set.
type Page struct {
	Clients    []model.ClientSummary `json:"clients"`
	Offset     int                   `json:"offset"`
	NextOffset int                   `json:"next_offset"`
	HasMore    bool                  `json:"has_more"`
}

type Service struct {
	src      Source
	pageSize int
}

func NewService(src Source, pageSize int) *Service {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}
	return &Service{src: src, pageSize: pageSize}
}

func (s *Service) clamp(limit int) int {
	switch {
	case limit <= 0:
		return s.pageSize
	case limit > MaxPageSize:
		return MaxPageSize
	}
	return limit
}

// List returns clients newest first, windowed by offset and limit.
func (s *Service) List(ctx context.Context, offset, limit int) (Page, error) {
	if offset < 0 {
		offset = 0
	}
	limit = s.clamp(limit)

	// One extra row tells us whether another page exists.
	rows, err := s.src.List(ctx, uint64(offset), uint64(limit+1))
	if err != nil {
		return Page{}, fmt.Errorf("list roster: %w", err)
	}
	page := Page{Offset: offset, NextOffset: offset + len(rows)}
	if len(rows) > limit {
		rows = rows[:limit]
		page.HasMore = true
		page.NextOffset = offset + limit
	}
	page.Clients = rows
	if page.Clients == nil {
		page.Clients = []model.ClientSummary{}
	}
	return page, nil
}

// Search matches an exact id when text is all digits and a case-insensitive
// name substring otherwise. Results are not paginated.
func (s *Service) Search(ctx context.Context, text string) ([]model.ClientSummary, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []model.ClientSummary{}, nil
	}

	var (
		out []model.ClientSummary
		err error
	)
	if isDigits(text) {
		id, perr := strconv.ParseInt(text, 10, 64)
		if perr != nil {
			// Too large to be an id.
			return []model.ClientSummary{}, nil
		}
		out, err = s.src.SearchByID(ctx, id)
	} else {
		out, err = s.src.SearchByName(ctx, text)
	}
	if err != nil {
		return nil, fmt.Errorf("search roster: %w", err)
	}
	if out == nil {
		out = []model.ClientSummary{}
	}
	return out, nil
}

// Find runs a search when q has text and a list otherwise. Search results
// come back as a single page.
func (s *Service) Find(ctx context.Context, q Query) (Page, error) {
	if strings.TrimSpace(q.Text) == "" {
		return s.List(ctx, q.Offset, q.Limit)
	}
	clients, err := s.Search(ctx, q.Text)
	if err != nil {
		return Page{}, err
	}
	return Page{Clients: clients, NextOffset: len(clients)}, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Row is a roster entry decorated for display.
type Row struct {
	model.ClientSummary
	StageLabel      string `json:"stage_label"`
	LastActivityAgo string `json:"last_activity_ago"`
	Age             string `json:"age"`
}

// Rows decorates clients with relative times measured from now.
func Rows(clients []model.ClientSummary, now time.Time) []Row {
	out := make([]Row, len(clients))
	for i, c := range clients {
		label := c.Stage
		if st, ok := model.ParseStage(c.Stage); ok {
			label = st.Label()
		}
		out[i] = Row{
			ClientSummary:   c,
			StageLabel:      label,
			LastActivityAgo: humanize.RelTime(c.LastActivity, now, "ago", "from now"),
			Age:             strings.TrimSpace(humanize.RelTime(c.Created, now, "", "")),
		}
	}
	return out
}
