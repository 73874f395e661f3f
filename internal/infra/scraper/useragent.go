package scraper

import (
	"math/rand"
	"net/http"
	"strings"
)

// userAgents is a rotation pool of modern desktop/mobile browser strings,
// refreshed periodically as browser versions age out of the ecosystem.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36 Edg/130.0.0.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.2 Safari/605.1.15",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:132.0) Gecko/20100101 Firefox/132.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36 Edg/131.0.0.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Linux; Android 14) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Mobile Safari/537.36",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 18_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.2 Mobile/15E148 Safari/604.1",
}

// randomUserAgent returns a random entry from the rotation pool.
func randomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// buildHeaders sets a realistic desktop-browser header set keyed off the
// chosen User-Agent's browser family, so Sec-Ch-Ua and friends stay
// internally consistent rather than flagging the request as a bot.
func buildHeaders(req *http.Request, ua string) {
	secUA, platform, platformVersion := secHeadersFor(ua)

	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Sec-Fetch-User", "?1")
	req.Header.Set("Sec-Ch-Ua", secUA)
	req.Header.Set("Sec-Ch-Ua-Mobile", "?0")
	req.Header.Set("Sec-Ch-Ua-Platform", platform)
	req.Header.Set("Sec-Ch-Ua-Platform-Version", platformVersion)
	req.Header.Set("Cache-Control", "max-age=0")
	req.Header.Set("DNT", "1")
}

func secHeadersFor(ua string) (secUA, platform, platformVersion string) {
	switch {
	case strings.Contains(ua, "Firefox"):
		return `"Not_A Brand";v="8.0", "Chromium";v="131", "Firefox";v="133.0"`, `"Windows"`, `"10.0.0"`
	case strings.Contains(ua, "iPhone") || strings.Contains(ua, "Version/") && strings.Contains(ua, "Safari"):
		return `"Not_A Brand";v="8.0", "Chromium";v="131", "Safari";v="18.2"`, `"macOS"`, `"14.5"`
	default:
		return `"Chromium";v="131", "Not_A Brand";v="24"`, `"Windows"`, `"10.0.0"`
	}
}
