package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/JonMunkholm/usertable/internal/core"
	json "github.com/goccy/go-json"
)

// maxPayloadSize bounds the upstream response body.
const maxPayloadSize = 32 << 20

// HTTPSource reads a dummyjson-style users endpoint.
type HTTPSource struct {
	client *http.Client
	url    string
	limit  int
}

// NewHTTPSource returns a source for endpoint. A nil client uses
// http.DefaultClient; limit > 0 adds ?limit= to the request.
func NewHTTPSource(client *http.Client, endpoint string, limit int) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{client: client, url: endpoint, limit: limit}
}

// usersPayload mirrors the upstream envelope.
type usersPayload struct {
	Users []userDTO `json:"users"`
	Total int       `json:"total"`
}

type userDTO struct {
	ID         int     `json:"id"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	MaidenName string  `json:"maidenName"`
	Age        int     `json:"age"`
	Gender     string  `json:"gender"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Height     float64 `json:"height"`
	Weight     float64 `json:"weight"`
	Image      string  `json:"image"`
	Address    struct {
		Address string `json:"address"`
		City    string `json:"city"`
		Country string `json:"country"`
	} `json:"address"`
}

func (u userDTO) record() core.Record {
	return core.Record{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		MaidenName: u.MaidenName,
		Age:        u.Age,
		Gender:     core.ParseGender(u.Gender),
		Phone:      u.Phone,
		Email:      u.Email,
		Address: core.Address{
			Country: u.Address.Country,
			City:    u.Address.City,
			Street:  u.Address.Address,
		},
		Height: u.Height,
		Weight: u.Weight,
		Image:  u.Image,
	}
}

// Fetch performs a single GET and decodes the users list.
func (s *HTTPSource) Fetch(ctx context.Context) ([]core.Record, error) {
	endpoint, err := s.endpoint()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch users: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch users: %w %d", ErrUpstreamStatus, resp.StatusCode)
	}

	var payload usersPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPayloadSize)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	records := make([]core.Record, len(payload.Users))
	for i, u := range payload.Users {
		records[i] = u.record()
	}
	return records, nil
}

func (s *HTTPSource) endpoint() (string, error) {
	u, err := url.Parse(s.url)
	if err != nil {
		return "", fmt.Errorf("parse source url: %w", err)
	}
	if s.limit > 0 {
		q := u.Query()
		q.Set("limit", strconv.Itoa(s.limit))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
