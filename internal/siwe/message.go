// Package siwe builds and inspects Sign-In-With-Ethereum challenge messages.
package siwe

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// Version is the message format version
	Version = "1"

	// ChainID is the chain the sign-in is bound to
	ChainID = 1

	// TimeLayout is the ISO-8601 layout of the Issued At field
	TimeLayout = "2006-01-02T15:04:05.000Z07:00"

	DefaultDomain   = "localhost:3000"
	DefaultURI      = "http://localhost:3000"
	DefaultGreeting = "Welcome! Sign this message to prove you own this wallet. It will not trigger a blockchain transaction or cost any gas."
)

var (
	addressPattern = regexp.MustCompile(`0x[0-9a-fA-F]{40}`)
	noncePattern   = regexp.MustCompile(`(?m)^Nonce:[ \t]*([^\r\n]*)`)
)

// Message holds the fields of a sign-in message
type Message struct {
	Domain   string
	Address  string
	Greeting string
	URI      string
	Nonce    string
	IssuedAt time.Time
}

// String renders the message in the exact text wallets sign
func (m Message) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s wants you to sign in with your Ethereum account:\n", m.Domain)
	fmt.Fprintf(&b, "%s\n\n", m.Address)
	fmt.Fprintf(&b, "%s\n\n", m.Greeting)
	fmt.Fprintf(&b, "URI: %s\n", m.URI)
	fmt.Fprintf(&b, "Version: %s\n", Version)
	fmt.Fprintf(&b, "Chain ID: %d\n", ChainID)
	fmt.Fprintf(&b, "Nonce: %s\n", m.Nonce)
	fmt.Fprintf(&b, "Issued At: %s", m.IssuedAt.UTC().Format(TimeLayout))
	return b.String()
}

// ExtractAddress returns the first 0x-prefixed 40 hex digit address in message
func ExtractAddress(message string) (string, bool) {
	addr := addressPattern.FindString(message)
	return addr, addr != ""
}

// ExtractNonce returns the trimmed value of the line starting with "Nonce:"
func ExtractNonce(message string) (string, bool) {
	m := noncePattern.FindStringSubmatch(message)
	if m == nil {
		return "", false
	}
	nonce := strings.TrimSpace(m[1])
	return nonce, nonce != ""
}
