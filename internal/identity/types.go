package identity

import "errors"

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("identity: not found")

// Principal is the minimal projection of an authenticated user record.
type Principal struct {
	ID      string
	Email   string
	Enabled bool
	Image   string
}

// Employee is linked 1:1 to a Principal via its user id.
type Employee struct {
	ID          string
	UserID      string
	FirstName   string
	LastName    string
	FullName    string
	Gender      string
	BirthDate   string
	Designation string
	Department  string
}

// SalesPartner is linked 1:1 to an Employee and accrues points.
type SalesPartner struct {
	ID           string
	EmployeeID   string
	PartnerType  string
	EarnedPoints int64
}

// Resolution carries the records produced by a successful chain lookup.
type Resolution struct {
	Principal Principal
	Employee  Employee
	Partner   SalesPartner
}

// Code identifies the gate at which chain resolution failed.
type Code string

const (
	CodeInactiveUser Code = "inactive_user"
	CodeNoEmployee   Code = "no_employee_link"
	CodeNoPartner    Code = "no_partner_link"
)

// ResolutionError is a client-reportable failure of the principal → employee
// → sales partner chain. Absence at any hop is a valid state, not a crash.
type ResolutionError struct {
	Code    Code
	Message string
}

func (e *ResolutionError) Error() string { return e.Message }

var (
	errInactiveUser = &ResolutionError{Code: CodeInactiveUser, Message: "User is not active"}
	errNoEmployee   = &ResolutionError{Code: CodeNoEmployee, Message: "No active employee linked to user"}
	errNoPartner    = &ResolutionError{Code: CodeNoPartner, Message: "No Sales Partner linked to employee"}
)
