package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/taskflow/taskflow-backend/model"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const (
	githubUserURL   = "https://api.github.com/user"
	githubEmailsURL = "https://api.github.com/user/emails"
)

type GithubProvider struct {
	config *oauth2.Config
}

func NewGithubProvider(clientID, clientSecret, redirectURL string) *GithubProvider {
	return &GithubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"user:email"},
			Endpoint:     github.Endpoint,
		},
	}
}

func (p *GithubProvider) Name() string {
	return model.ProviderGithub
}

func (p *GithubProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

func (p *GithubProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.config.Exchange(ctx, code)
}

type githubUserInfo struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// FetchProfile reads the authenticated user. GitHub omits the email when it
// is not public, so the emails endpoint is the fallback; the profile may
// still come back without one.
func (p *GithubProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	var info githubUserInfo
	if err := p.getJSON(ctx, token, githubUserURL, &info); err != nil {
		return nil, err
	}

	email := info.Email
	if email == "" {
		var emails []githubEmail
		if err := p.getJSON(ctx, token, githubEmailsURL, &emails); err == nil {
			for _, e := range emails {
				if e.Primary && e.Verified {
					email = e.Email
					break
				}
			}
			if email == "" {
				for _, e := range emails {
					if e.Verified {
						email = e.Email
						break
					}
				}
			}
		}
	}

	return &Profile{
		Provider: model.ProviderGithub,
		ID:       strconv.FormatInt(info.ID, 10),
		Name:     info.Name,
		Login:    info.Login,
		Email:    email,
		Avatar:   info.AvatarURL,
	}, nil
}

func (p *GithubProvider) getJSON(ctx context.Context, token *oauth2.Token, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github api returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
