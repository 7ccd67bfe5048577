package entity

// Claim types written into access tokens.
const (
	ClaimSubject = "sub"
	ClaimJWTID   = "jti"
	ClaimEmail   = "email"
	ClaimUserID  = "uid"
	ClaimRole    = "role"
)

// Claim is a typed key/value fact carried by an access token.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func NewClaim(claimType, value string) Claim {
	return Claim{Type: claimType, Value: value}
}

// ClaimSet is a bag of claims. Only role claims may repeat; any other type
// keeps the first value it was given. Each call to Add is one source: a
// (type, value) pair repeated inside a single source is kept once.
type ClaimSet struct {
	claims []Claim
}

func NewClaimSet(claims ...Claim) *ClaimSet {
	s := &ClaimSet{}
	s.Add(claims...)
	return s
}

// Add merges one source of claims into the set.
func (s *ClaimSet) Add(source ...Claim) {
	seen := make(map[Claim]struct{}, len(source))
	for _, c := range source {
		if c.Type == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}

		if c.Type != ClaimRole && s.Has(c.Type) {
			continue
		}
		s.claims = append(s.claims, c)
	}
}

func (s *ClaimSet) Has(claimType string) bool {
	for _, c := range s.claims {
		if c.Type == claimType {
			return true
		}
	}
	return false
}

// First returns the first value recorded for claimType.
func (s *ClaimSet) First(claimType string) (string, bool) {
	for _, c := range s.claims {
		if c.Type == claimType {
			return c.Value, true
		}
	}
	return "", false
}

// Values returns every value recorded for claimType in insertion order.
func (s *ClaimSet) Values(claimType string) []string {
	var values []string
	for _, c := range s.claims {
		if c.Type == claimType {
			values = append(values, c.Value)
		}
	}
	return values
}

func (s *ClaimSet) Claims() []Claim {
	out := make([]Claim, len(s.claims))
	copy(out, s.claims)
	return out
}

func (s *ClaimSet) Len() int {
	return len(s.claims)
}
