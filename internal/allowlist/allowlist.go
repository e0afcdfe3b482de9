package allowlist

import (
	"strings"

	"go.uber.org/zap"
)

// Checker restricts recipients to a configured set of domains
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new domain checker. An empty list allows every domain.
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalizedDomains := make([]string, 0, len(domains))
	for _, domain := range domains {
		if d := strings.ToLower(strings.TrimSpace(domain)); d != "" {
			normalizedDomains = append(normalizedDomains, d)
		}
	}

	if len(normalizedDomains) > 0 && logger != nil {
		logger.Info("Restricting recipients to allowed domains", zap.Strings("domains", normalizedDomains))
	}

	return &Checker{
		domains: normalizedDomains,
		logger:  logger,
	}
}

// IsAllowed checks if the address's domain is allowed
func (c *Checker) IsAllowed(addr string) bool {
	if len(c.domains) == 0 {
		return true
	}

	at := strings.LastIndex(addr, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(addr[at+1:])

	for _, allowed := range c.domains {
		if domain == allowed {
			return true
		}
	}

	if c.logger != nil {
		c.logger.Debug("Domain is not allowed",
			zap.String("domain", domain),
			zap.String("email", addr))
	}
	return false
}

// Rejected returns every address whose domain is not allowed
func (c *Checker) Rejected(addrs []string) []string {
	var rejected []string
	for _, addr := range addrs {
		if !c.IsAllowed(addr) {
			rejected = append(rejected, addr)
		}
	}
	return rejected
}
