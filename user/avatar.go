package user

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/jpeg"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// Hosts that refuse cross-origin avatar fetches from browsers; only these
// get proxied, everything else is returned as-is.
var proxiedHosts = []string{
	"googleusercontent.com",
	"googleapis.com",
}

const maxAvatarBytes = 5 << 20

// AvatarProxy resolves a user's avatar into a URL the frontend can render:
// images hosted behind cross-origin restrictions are fetched server-side,
// re-encoded to JPEG and inlined as a data URL. Any upstream failure
// degrades to the stored URL, never an error.
type AvatarProxy struct {
	repo   Repository
	client *http.Client
}

func NewAvatarProxy(repo Repository, timeout time.Duration) *AvatarProxy {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &AvatarProxy{
		repo:   repo,
		client: &http.Client{Timeout: timeout},
	}
}

// WithClient overrides the HTTP client, used by tests.
func (p *AvatarProxy) WithClient(client *http.Client) *AvatarProxy {
	p.client = client
	return p
}

// Resolve returns the renderable image URL for the given subject.
func (p *AvatarProxy) Resolve(ctx context.Context, subject string) (string, error) {
	u, err := p.repo.GetBySubjectOrID(ctx, subject)
	if err != nil {
		return "", err
	}
	if u.Picture == "" {
		return "", fmt.Errorf("%w: no picture", ErrNotFound)
	}

	// Already inlined.
	if strings.HasPrefix(u.Picture, "data:") {
		return u.Picture, nil
	}

	if !needsProxy(u.Picture) {
		return u.Picture, nil
	}

	inlined, err := p.fetchAndInline(ctx, u.Picture)
	if err != nil {
		log.Printf("avatar proxy fallback for %s: %v", subject, err)
		return u.Picture, nil
	}
	return inlined, nil
}

func (p *AvatarProxy) fetchAndInline(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("user: build avatar request: %w", err)
	}
	req.Header.Set("Accept", "image/webp,image/apng,image/*,*/*;q=0.8")
	req.Header.Set("User-Agent", "rentmate/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("user: fetch avatar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("user: avatar upstream status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAvatarBytes))
	if err != nil {
		return "", fmt.Errorf("user: read avatar body: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(body), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("user: decode avatar: %w", err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpeg.DefaultQuality)); err != nil {
		return "", fmt.Errorf("user: encode avatar: %w", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func needsProxy(url string) bool {
	for _, host := range proxiedHosts {
		if strings.Contains(url, host) {
			return true
		}
	}
	return false
}
