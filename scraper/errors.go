package scraper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aluiziolira/go-scrape-shop/fetch"
)

// ProtocolError indicates the GraphQL server reported errors in its
// response payload. It halts the review walk; records gathered before
// it are kept.
type ProtocolError struct {
	Messages []string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("graphql errors: %s", strings.Join(e.Messages, "; "))
}

func errorLabel(err error) string {
	if err == nil {
		return "none"
	}
	var transport *fetch.TransportError
	if errors.As(err, &transport) {
		return "transport"
	}
	var status *fetch.StatusError
	if errors.As(err, &status) {
		return "http_status"
	}
	var protocol *ProtocolError
	if errors.As(err, &protocol) {
		return "protocol"
	}
	return "other"
}
