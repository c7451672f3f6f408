package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/stridestats/stridestats/internal/activities"
	"github.com/stridestats/stridestats/internal/telemetry/tracing"
)

const DefaultBaseURL = "https://www.strava.com/api/v3"

// rawColumns is the column vocabulary the fetched table exposes; the
// normalizer derives the canonical schema from it.
var rawColumns = []string{"name", "start_date", "distance", "moving_time", "elapsed_time", "sport_type"}

// Api talks to the Strava V3 API: refreshes the OAuth access token and
// fetches the athlete's activities page by page. Fetched tables are kept
// in a TTL cache keyed by the fetch parameters, so repeated identical
// fetches within the TTL do not hit the remote API.
type Api struct {
	baseURL      string
	clientID     string
	clientSecret string
	refreshToken string
	httpClient   *http.Client

	cache    *freecache.Cache
	cacheTTL time.Duration

	// tokenMutex guards the cached access token; concurrent refreshes
	// would otherwise race on it
	tokenMutex        sync.Mutex
	accessToken       string
	accessTokenExpiry time.Time
}

func NewApi(baseURL, clientID, clientSecret, refreshToken string, cacheTTL time.Duration, httpClient *http.Client) *Api {
	megabyte := 1024 * 1024
	cacheSize := 10 * megabyte

	return &Api{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		httpClient:   httpClient,
		cache:        freecache.NewCache(cacheSize),
		cacheTTL:     cacheTTL,
	}
}

// FetchActivities gets up to MaxPages * PerPage activities, newest first,
// as a raw table for the normalizer. params.Force bypasses the cache and
// overwrites the cached entry with the fresh result.
func (api *Api) FetchActivities(ctx context.Context, params activities.FetchParams) (_ *activities.RawTable, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stravaApi.fetchActivities")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("per_page", params.PerPage),
		attribute.Int("max_pages", params.MaxPages),
	)

	cacheKey := []byte(fmt.Sprintf("activities::%d::%d", params.PerPage, params.MaxPages))
	if !params.Force {
		if cachedBytes, cacheErr := api.cache.Get(cacheKey); cacheErr == nil {
			var table activities.RawTable
			if unmarshalErr := json.Unmarshal(cachedBytes, &table); unmarshalErr == nil {
				log.Tracef("found activities for %s in cache", cacheKey)
				return &table, nil
			} else {
				log.Errorf("failed to unmarshal cached activities: %s", unmarshalErr)
			}
		}
	}

	accessToken, err := api.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get access token: %w", err)
	}

	table := &activities.RawTable{Columns: rawColumns}
	for page := 1; page <= params.MaxPages; page++ {
		pageActivities, err := api.fetchPage(ctx, accessToken, page, params.PerPage)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}

		for _, act := range pageActivities {
			table.Rows = append(table.Rows, map[string]string{
				"name":         act.Name,
				"start_date":   act.StartDate,
				"distance":     strconv.FormatFloat(act.Distance, 'f', -1, 64),
				"moving_time":  strconv.Itoa(act.MovingTime),
				"elapsed_time": strconv.Itoa(act.ElapsedTime),
				"sport_type":   act.sportOrLegacyType(),
			})
		}

		// short page means there is nothing more to fetch
		if len(pageActivities) < params.PerPage {
			break
		}
	}

	if tableBytes, marshalErr := json.Marshal(table); marshalErr == nil {
		if cacheErr := api.cache.Set(cacheKey, tableBytes, int(api.cacheTTL.Seconds())); cacheErr != nil {
			log.Errorf("failed to cache fetched activities: %s", cacheErr)
		}
	}

	log.Debugf("fetched %d activities from strava", len(table.Rows))

	return table, nil
}

func (api *Api) fetchPage(ctx context.Context, accessToken string, page, perPage int) (_ []activityResponse, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stravaApi.fetchPage")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	activitiesURL := fmt.Sprintf(
		"%s/athlete/activities?page=%d&per_page=%d",
		api.baseURL, page, perPage,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, activitiesURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := api.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read activities response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("activities request status %d: %s", resp.StatusCode, respBytes)
	}

	var pageActivities []activityResponse
	if err := json.Unmarshal(respBytes, &pageActivities); err != nil {
		return nil, fmt.Errorf("unmarshal activities response: %w", err)
	}

	return pageActivities, nil
}

// getAccessToken exchanges the long-lived refresh token for an access
// token, reusing the previous one until shortly before it expires. The
// check-and-refresh runs under the token mutex so concurrent fetches get
// one token exchange, not a race.
func (api *Api) getAccessToken(ctx context.Context) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stravaApi.getAccessToken")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	api.tokenMutex.Lock()
	defer api.tokenMutex.Unlock()

	if api.accessToken != "" && time.Now().Add(time.Minute).Before(api.accessTokenExpiry) {
		return api.accessToken, nil
	}

	form := url.Values{}
	form.Set("client_id", api.clientID)
	form.Set("client_secret", api.clientSecret)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", api.refreshToken)

	tokenURL := strings.TrimSuffix(api.baseURL, "/api/v3") + "/oauth/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := api.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request status %d: %s", resp.StatusCode, respBytes)
	}

	var token tokenResponse
	if err := json.Unmarshal(respBytes, &token); err != nil {
		return "", fmt.Errorf("unmarshal token response: %w", err)
	}

	api.accessToken = token.AccessToken
	api.accessTokenExpiry = time.Unix(token.ExpiresAt, 0)

	return api.accessToken, nil
}

// sportOrLegacyType prefers the newer sport_type field, falling back to
// the legacy type for older activities.
func (a activityResponse) sportOrLegacyType() string {
	if a.SportType != "" {
		return a.SportType
	}
	return a.Type
}
