package domain

type CtxKey string

const (
	// KeyAdminSubject holds the "sub" claim of an authenticated admin token.
	KeyAdminSubject CtxKey = "AdminSubject"
)
