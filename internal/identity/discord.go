package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"go-entry-board/internal/model"
	"go-entry-board/pkg/apierror"
)

// Provider turns an authorization code from the redirect step into a profile.
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (model.Identity, error)
}

type Discord struct {
	oauth      *oauth2.Config
	apiBase    string
	httpClient *http.Client
}

type discordUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

func NewDiscord(clientID string, clientSecret string, redirectURL string, apiBase string) *Discord {
	apiBase = strings.TrimRight(apiBase, "/")

	return &Discord{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"identify"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   apiBase + "/oauth2/authorize",
				TokenURL:  apiBase + "/oauth2/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiBase:    apiBase,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *Discord) AuthCodeURL(state string) string {
	return d.oauth.AuthCodeURL(state)
}

// Exchange makes exactly two outbound calls: the token exchange and the
// profile fetch. Failures are not retried; the caller restarts the flow.
func (d *Discord) Exchange(ctx context.Context, code string) (model.Identity, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, d.httpClient)

	token, err := d.oauth.Exchange(ctx, code)
	if err != nil {
		return model.Identity{}, upstream("token exchange", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.apiBase+"/users/@me", nil)
	if err != nil {
		return model.Identity{}, fmt.Errorf("build profile request: %w", err)
	}

	resp, err := d.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return model.Identity{}, upstream("profile fetch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return model.Identity{}, upstream("profile fetch", fmt.Errorf("status %d", resp.StatusCode))
	}

	var profile discordUser
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&profile); err != nil {
		return model.Identity{}, upstream("profile decode", err)
	}

	profile.ID = strings.TrimSpace(profile.ID)
	profile.Username = strings.TrimSpace(profile.Username)
	if profile.ID == "" || profile.Username == "" {
		return model.Identity{}, upstream("profile decode", fmt.Errorf("profile is missing id or username"))
	}

	return model.Identity{ID: profile.ID, Username: profile.Username, Avatar: profile.Avatar}, nil
}

func upstream(step string, err error) error {
	slog.Warn("identity provider call failed", "step", step, "error", err)
	return apierror.Upstream("identity provider " + step + " failed")
}
