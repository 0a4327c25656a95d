package issueloan

import (
	"time"

	"github.com/google/uuid"
)

const (
	commandType = "IssueLoan"
)

// Command represents the intent to lend a book to a member.
// OperationID correlates logs and traces of one request, it is not persisted.
type Command struct {
	OperationID uuid.UUID
	MemberID    int64
	BookID      int64
	LoanDate    time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// CorrelationID returns the OperationID for log and trace correlation.
func (c Command) CorrelationID() string {
	return c.OperationID.String()
}

// BuildCommand creates a new Command with a fresh OperationID.
func BuildCommand(memberID int64, bookID int64, loanDate time.Time) Command {
	return Command{
		OperationID: uuid.New(),
		MemberID:    memberID,
		BookID:      bookID,
		LoanDate:    loanDate,
	}
}
