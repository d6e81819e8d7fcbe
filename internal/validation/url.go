package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// LinkValidator checks links taken from posts before they are fetched for a
// preview or handed to the system browser.
type LinkValidator struct {
	// AllowLocalhost determines if localhost URLs are permitted
	AllowLocalhost bool
	// AllowPrivateIPs determines if private IP addresses are permitted
	AllowPrivateIPs bool
	// AllowMailto admits mailto: links, which only the launcher can handle
	AllowMailto bool
	// MaxLength is the maximum allowed URL length
	MaxLength int
}

// NewLinkValidator returns a validator for links that will be fetched.
func NewLinkValidator() *LinkValidator {
	return &LinkValidator{
		MaxLength: 2048,
	}
}

// NewLaunchValidator returns a validator for links opened in the browser.
// The browser does its own fetching, so local hosts are allowed.
func NewLaunchValidator() *LinkValidator {
	return &LinkValidator{
		AllowLocalhost:  true,
		AllowPrivateIPs: true,
		AllowMailto:     true,
		MaxLength:       2048,
	}
}

// NewPermissiveLinkValidator creates a validator that allows local development
func NewPermissiveLinkValidator() *LinkValidator {
	return &LinkValidator{
		AllowLocalhost:  true,
		AllowPrivateIPs: true,
		MaxLength:       2048,
	}
}

// ValidateAndNormalize validates a link and returns the normalized version
func (v *LinkValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	if len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'`") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	if v.AllowMailto && strings.HasPrefix(strings.ToLower(input), "mailto:") {
		return v.validateMailto(input)
	}

	if !strings.Contains(input, "://") {
		if scheme, ok := opaqueScheme(input); ok {
			return "", fmt.Errorf("unsupported URL scheme %q", scheme)
		}
		input = "https://" + input
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}

	if err := v.validateHostSecurity(parsedURL.Host); err != nil {
		return "", err
	}
	if err := validateQuerySecurity(parsedURL); err != nil {
		return "", err
	}

	return parsedURL.String(), nil
}

func (v *LinkValidator) validateMailto(input string) (string, error) {
	parsedURL, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid mailto link: %w", err)
	}
	addr := parsedURL.Opaque
	if at := strings.Index(addr, "@"); at <= 0 || at == len(addr)-1 {
		return "", fmt.Errorf("mailto link needs an address")
	}
	return parsedURL.String(), nil
}

// validateHostSecurity performs security checks on the hostname
func (v *LinkValidator) validateHostSecurity(host string) error {
	hostname := host
	if strings.Contains(host, ":") && !strings.HasSuffix(host, "]") {
		var err error
		hostname, _, err = net.SplitHostPort(host)
		if err != nil {
			return fmt.Errorf("invalid host format: %w", err)
		}
	}
	hostname = strings.Trim(hostname, "[]")

	if !v.AllowLocalhost && isLocalhost(hostname) {
		return fmt.Errorf("localhost URLs are not permitted")
	}

	if !v.AllowPrivateIPs {
		if ip := net.ParseIP(hostname); ip != nil && isPrivateIP(ip) {
			return fmt.Errorf("private IP addresses are not permitted")
		}
	}

	if isSuspiciousHostname(hostname) {
		return fmt.Errorf("suspicious hostname detected")
	}

	return nil
}

// opaqueScheme detects inputs such as "javascript:..." that carry a scheme
// without an authority. "host:8080" is treated as a port, not a scheme.
func opaqueScheme(input string) (string, bool) {
	i := strings.Index(input, ":")
	if i <= 0 || i == len(input)-1 {
		return "", false
	}
	scheme := input[:i]
	for _, r := range scheme {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '+' || r == '-' || r == '.') {
			return "", false
		}
	}
	if next := input[i+1]; next >= '0' && next <= '9' {
		return "", false
	}
	return strings.ToLower(scheme), true
}

func validateQuerySecurity(parsedURL *url.URL) error {
	q := strings.ToLower(parsedURL.RawQuery)
	if strings.Contains(q, "<script") || strings.Contains(q, "javascript:") {
		return fmt.Errorf("suspicious query parameters detected")
	}
	return nil
}

func isLocalhost(hostname string) bool {
	return hostname == "localhost" ||
		hostname == "127.0.0.1" ||
		hostname == "::1" ||
		strings.HasSuffix(hostname, ".localhost")
}

var privateBlocks = func() []*net.IPNet {
	var blocks []*net.IPNet
	for _, cidr := range []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"169.254.0.0/16",
		"127.0.0.0/8",
		"fc00::/7",
		"fe80::/10",
	} {
		_, block, _ := net.ParseCIDR(cidr)
		blocks = append(blocks, block)
	}
	return blocks
}()

// isPrivateIP checks if an IP address is in a private, loopback or
// link-local range
func isPrivateIP(ip net.IP) bool {
	for _, block := range privateBlocks {
		if block.Contains(ip) {
			return true
		}
	}
	return ip.IsLoopback()
}

// isSuspiciousHostname flags unroutable and obfuscated hostnames
func isSuspiciousHostname(hostname string) bool {
	hostname = strings.ToLower(hostname)
	if hostname == "0.0.0.0" || hostname == "255.255.255.255" {
		return true
	}

	// four dotted groups of hex digits that do not form an IP
	if strings.Count(hostname, ".") == 3 && net.ParseIP(hostname) == nil {
		for _, part := range strings.Split(hostname, ".") {
			if !isHexString(strings.TrimPrefix(part, "0x")) {
				return false
			}
		}
		return true
	}

	return false
}

func isHexString(s string) bool {
	if s == "" {
		return false
	}
	for _, char := range s {
		if !((char >= '0' && char <= '9') || (char >= 'a' && char <= 'f') || (char >= 'A' && char <= 'F')) {
			return false
		}
	}
	return true
}
