package returnloan

import (
	"time"

	"github.com/google/uuid"
)

const (
	commandType = "ReturnLoan"
)

// Command represents the intent to return a lent book.
type Command struct {
	OperationID uuid.UUID
	LoanID      int64
	ReturnDate  time.Time
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
func BuildCommand(loanID int64, returnDate time.Time) Command {
	return Command{
		OperationID: uuid.New(),
		LoanID:      loanID,
		ReturnDate:  returnDate,
	}
}
