// Spotify Web API client
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jam/internal/models"
	"github.com/desertthunder/jam/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is the Web API root.
const DefaultBaseURL = "https://api.spotify.com/v1"

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyUser represents the current user's profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	URI         string `json:"uri"`
}

// SpotifyArtist represents a simplified artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a simplified album.
type SpotifyAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyTrack represents a track object as returned by search and track lookup.
type SpotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []SpotifyArtist `json:"artists"`
	Album   SpotifyAlbum    `json:"album"`
	URI     string          `json:"uri"`
}

// SpotifyPlaylist represents a newly created playlist.
type SpotifyPlaylist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Public       bool         `json:"public"`
	URI          string       `json:"uri"`
	ExternalURLs externalURLs `json:"external_urls"`
}

// searchResponse has a nil Tracks when the API omits the collection.
type searchResponse struct {
	Tracks *struct {
		Items []SpotifyTrack `json:"items"`
	} `json:"tracks"`
}

type snapshotResponse struct {
	SnapshotID string `json:"snapshot_id"`
}

// StatusError is a non-2xx response from the Web API.
type StatusError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%v: %s %s: status %d", shared.ErrAPIRequest, e.Method, e.Endpoint, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *StatusError) Unwrap() error { return shared.ErrAPIRequest }

// SpotifyOpts configures a [SpotifyClient].
type SpotifyOpts struct {
	Credentials oauth2.TokenSource
	HTTPClient  *http.Client
	BaseURL     string
	Logger      *log.Logger
	Cache       TrackCacher // optional
}

// SpotifyClient implements [PlaylistBuilder] against the Web API.
type SpotifyClient struct {
	tokens     oauth2.TokenSource
	httpClient *http.Client
	baseURL    string
	logger     *log.Logger
	cache      TrackCacher
}

// NewSpotifyClient creates a client. Credentials is required.
func NewSpotifyClient(opts SpotifyOpts) (*SpotifyClient, error) {
	if opts.Credentials == nil {
		return nil, fmt.Errorf("%w: credential source", shared.ErrMissingArgument)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &SpotifyClient{
		tokens:     opts.Credentials,
		httpClient: opts.HTTPClient,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		logger:     opts.Logger,
		cache:      opts.Cache,
	}, nil
}

// MapTrack flattens a raw track. A track without artists gets an empty artist.
func MapTrack(raw SpotifyTrack) models.Track {
	t := models.Track{
		ID:    raw.ID,
		Name:  raw.Name,
		Album: raw.Album.Name,
		URI:   raw.URI,
	}
	if len(raw.Artists) > 0 {
		t.Artist = raw.Artists[0].Name
	}
	return t
}

// doRequest performs an authenticated request, encoding body as JSON when non-nil and decoding into result when non-nil.
func (s *SpotifyClient) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	token, err := s.tokens.Token()
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	token.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", shared.ErrAPIRequest, method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if result == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// Search looks up tracks matching query.
//
// Failures are logged and yield an empty slice; a response without a tracks collection does too.
func (s *SpotifyClient) Search(ctx context.Context, query string) []models.Track {
	params := url.Values{"type": {"track"}, "q": {query}}

	var resp searchResponse
	if err := s.doRequest(ctx, http.MethodGet, "/search?"+params.Encode(), nil, &resp); err != nil {
		s.logger.Error("search failed", "query", query, "error", err)
		return []models.Track{}
	}

	if resp.Tracks == nil {
		s.logger.Debug("search response has no tracks", "query", query)
		return []models.Track{}
	}

	tracks := make([]models.Track, 0, len(resp.Tracks.Items))
	for _, item := range resp.Tracks.Items {
		tracks = append(tracks, MapTrack(item))
	}

	if s.cache != nil {
		if err := s.cache.CacheTracks(tracks); err != nil {
			s.logger.Warn("failed to cache search results", "error", err)
		}
	}

	return tracks
}

// CurrentUser fetches the authenticated user's profile.
func (s *SpotifyClient) CurrentUser(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%w: current user has no id", shared.ErrAPIRequest)
	}
	return &user, nil
}

// CreatePlaylist creates an empty playlist owned by userID. The body carries only the name.
func (s *SpotifyClient) CreatePlaylist(ctx context.Context, userID, name string) (*SpotifyPlaylist, error) {
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	body := map[string]string{"name": name}

	var playlist SpotifyPlaylist
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &playlist); err != nil {
		return nil, err
	}
	if playlist.ID == "" {
		return nil, fmt.Errorf("%w: created playlist has no id", shared.ErrAPIRequest)
	}
	return &playlist, nil
}

// AddTracks appends uris to playlistID in one request and returns the new snapshot id.
func (s *SpotifyClient) AddTracks(ctx context.Context, playlistID string, uris []string) (string, error) {
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	body := map[string][]string{"uris": uris}

	var snapshot snapshotResponse
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &snapshot); err != nil {
		return "", err
	}
	return snapshot.SnapshotID, nil
}

// SavePlaylist resolves the current user, creates a playlist named name and adds uris to it, in that order.
//
// An empty name or uris makes no calls and returns (nil, nil). The first failing step stops the chain;
// the failure is logged and (nil, nil) is returned as for a no-op save. Only a missing credential is
// returned as an error. A playlist created before a failed track step is not removed.
func (s *SpotifyClient) SavePlaylist(ctx context.Context, name string, uris []string) (*SaveResult, error) {
	if name == "" || len(uris) == 0 {
		return nil, nil
	}

	user, err := s.CurrentUser(ctx)
	if err != nil {
		return s.saveFailed(err, "save failed resolving current user")
	}

	playlist, err := s.CreatePlaylist(ctx, user.ID, name)
	if err != nil {
		return s.saveFailed(err, "save failed creating playlist", "user", user.ID, "name", name)
	}

	snapshot, err := s.AddTracks(ctx, playlist.ID, uris)
	if err != nil {
		return s.saveFailed(err, "save failed adding tracks; playlist left empty", "playlist", playlist.ID, "tracks", len(uris))
	}

	s.logger.Info("playlist saved", "playlist", playlist.ID, "name", name, "tracks", len(uris))
	return &SaveResult{
		UserID:      user.ID,
		PlaylistID:  playlist.ID,
		Name:        name,
		URL:         playlist.ExternalURLs.Spotify,
		TracksAdded: len(uris),
		SnapshotID:  snapshot,
	}, nil
}

// saveFailed logs a failed save step. An unauthorized error is passed through; anything else is swallowed.
func (s *SpotifyClient) saveFailed(err error, msg string, kv ...any) (*SaveResult, error) {
	if errors.Is(err, shared.ErrUnauthorized) {
		return nil, err
	}
	s.logger.Error(msg, append(kv, "error", err)...)
	return nil, nil
}

// Track fetches one track by id.
//
// A non-2xx response fails with [shared.ErrRequestFailed]; transport and decode failures wrap it.
// A missing credential is returned unchanged.
func (s *SpotifyClient) Track(ctx context.Context, id string) (models.Track, error) {
	var raw SpotifyTrack
	err := s.doRequest(ctx, http.MethodGet, "/tracks/"+url.PathEscape(id), nil, &raw)

	var status *StatusError
	switch {
	case err == nil:
		return MapTrack(raw), nil
	case errors.Is(err, shared.ErrUnauthorized):
		return models.Track{}, err
	case errors.As(err, &status):
		s.logger.Error("track lookup failed", "id", id, "status", status.StatusCode)
		return models.Track{}, shared.ErrRequestFailed
	default:
		s.logger.Error("track lookup failed", "id", id, "error", err)
		return models.Track{}, fmt.Errorf("%w: %w", shared.ErrRequestFailed, err)
	}
}
