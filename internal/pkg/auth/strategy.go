package auth

import "time"

// Claims is what a token asserts about its bearer.
type Claims struct {
	UserID int64
	Role   string
}

type Strategy interface {
	IssueToken(claims Claims) (string, error)
	ParseToken(token string) (Claims, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
