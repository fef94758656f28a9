package domain

// Baseline role and initial presence for newly registered users.
const (
	DefaultAccountType = "student"
	StatusOnline       = "online"
)

// User is the durable user record. Consent flags are stored as 0/1 to match
// the flat hash representation in the store.
type User struct {
	UID         int64  `json:"uid"`
	Username    string `json:"username"`
	Userslug    string `json:"userslug"`
	Email       string `json:"email"`
	AccountType string `json:"accountType"`
	JoinDate    int64  `json:"joindate"`
	LastOnline  int64  `json:"lastonline"`
	Status      string `json:"status"`

	Fullname string `json:"fullname,omitempty"`
	Location string `json:"location,omitempty"`
	Birthday string `json:"birthday,omitempty"`
	Picture  string `json:"picture,omitempty"`

	GDPRConsent    int `json:"gdpr_consent"`
	AcceptTos      int `json:"acceptTos"`
	EmailConfirmed int `json:"email:confirmed,omitempty"`
}

// RegistrationRequest is the raw caller-supplied input. It is transient and
// never persisted as-is.
type RegistrationRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	Password    string `json:"password,omitempty"`
	AccountType string `json:"accountType,omitempty"`
	// Some callers send the account type under a dashed alias; it is
	// normalized into AccountType before anything else looks at it.
	AccountTypeAlias string `json:"account-type,omitempty"`

	Fullname string `json:"fullname,omitempty"`
	Picture  string `json:"picture,omitempty"`
	Location string `json:"location,omitempty"`
	Birthday string `json:"birthday,omitempty"`

	GDPRConsent bool `json:"gdpr_consent,omitempty"`
	AcceptTos   bool `json:"acceptTos,omitempty"`

	// Explicit creation timestamp in epoch millis; zero means "now".
	Timestamp int64 `json:"timestamp,omitempty"`
}
