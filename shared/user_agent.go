package shared

import (
	"fmt"
	"net/http"
	"os"
	"strings"
)

const (
	versionFileName   = "version.txt"
	userAgentTemplate = "%s/%s"
)

// IUserAgent stamps our identifying User-Agent onto outbound HTTP requests.
// Reddit requires a descriptive agent string on every API call.
type IUserAgent interface {
	AddUserAgent(req *http.Request)
	Value() string
}

type userAgent struct {
	userAgentValue string
}

func NewUserAgent(cfg *Config) IUserAgent {
	return &userAgent{
		userAgentValue: buildUserAgentString(cfg.UserAgent),
	}
}

func buildUserAgentString(base string) string {
	versionBytes, _ := os.ReadFile(versionFileName)
	versionStr := strings.TrimSpace(string(versionBytes))
	versionStr = strings.TrimPrefix(versionStr, "v")
	if versionStr == "" {
		versionStr = "dev"
	}
	return fmt.Sprintf(userAgentTemplate, base, versionStr)
}

func (ua *userAgent) AddUserAgent(req *http.Request) {
	req.Header.Add("User-Agent", ua.userAgentValue)
}

func (ua *userAgent) Value() string {
	return ua.userAgentValue
}
