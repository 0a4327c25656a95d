package sqlengine

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
	"github.com/AntonStoeckl/library-circulation-go/librarystore/sqlengine/internal/adapters"
)

const (
	operationSaveLoan          = "save_loan"
	operationLoanByID          = "loan_by_id"
	operationActiveLoansCount  = "active_loans_count"
	operationActiveLoans       = "active_loans"
	operationOverdueLoans      = "overdue_loans"
	operationCountActiveLoans  = "count_active_loans"
	operationCountOverdueLoans = "count_overdue_loans"
	operationAppendLoan        = "append_loan"
	operationCloseLoan         = "close_loan"
)

func loanRecord(loan *librarystore.Loan) goqu.Record {
	return goqu.Record{
		colMemberID:   loan.MemberID,
		colBookID:     loan.BookID,
		colLoanDate:   dateArg(loan.LoanDate),
		colDueDate:    dateArg(loan.DueDate),
		colReturnDate: dateArgPtr(loan.ReturnDate),
		colFineAmount: loan.FineAmount,
	}
}

func isActive() exp.Expression {
	return goqu.C(colReturnDate).IsNull()
}

// SaveLoan inserts the loan if it has no ID yet and assigns the generated ID, otherwise it updates the row.
// It does not check the active loan limit, use AppendLoan for issuing.
// Zero loan and due dates default to today and the regular loan period.
func (s Store) SaveLoan(ctx context.Context, loan *librarystore.Loan) error {
	observer, ctx := s.observe(ctx, operationSaveLoan)

	loan.ApplyDefaultDates(librarystore.Today())

	err := s.runInTx(ctx, operationSaveLoan, func(ctx context.Context, tx adapters.DBTx) error {
		if loan.ID == 0 {
			id, err := s.insertIn(ctx, tx, tableLoans, loanRecord(loan))
			if err != nil {
				return err
			}

			loan.ID = id
			return nil
		}

		_, err := s.updateIn(ctx, tx, tableLoans, loan.ID, loanRecord(loan))
		return err
	})

	if err != nil {
		return observer.finishError(err)
	}

	observer.finishSuccess(1)

	return nil
}

// LoanByID returns the loan with the given ID. found is false if there is none.
func (s Store) LoanByID(ctx context.Context, id int64) (librarystore.Loan, bool, error) {
	observer, ctx := s.observe(ctx, operationLoanByID, spanAttrEntityID, strconv.FormatInt(id, 10))

	loans, err := s.selectLoans(ctx, s.db, operationLoanByID, goqu.C(colID).Eq(id))
	if err != nil {
		return librarystore.Loan{}, false, observer.finishError(err)
	}

	if len(loans) == 0 {
		observer.finishSuccess(0)
		return librarystore.Loan{}, false, nil
	}

	observer.finishSuccess(1)

	return loans[0], true, nil
}

// ActiveLoansCount returns how many loans of the member are not returned yet.
func (s Store) ActiveLoansCount(ctx context.Context, memberID int64) (int, error) {
	observer, ctx := s.observe(ctx, operationActiveLoansCount, spanAttrEntityID, strconv.FormatInt(memberID, 10))

	count, err := s.activeLoansCountIn(ctx, s.db, memberID)
	if err != nil {
		return 0, observer.finishError(err)
	}

	observer.finishSuccess(1)

	return count, nil
}

// ActiveLoans returns all loans that are not returned yet, ordered by ID.
func (s Store) ActiveLoans(ctx context.Context) (librarystore.Loans, error) {
	observer, ctx := s.observe(ctx, operationActiveLoans)

	loans, err := s.selectLoans(ctx, s.db, operationActiveLoans, isActive())
	if err != nil {
		return nil, observer.finishError(err)
	}

	observer.finishSuccess(len(loans))

	return loans, nil
}

// OverdueLoans returns all active loans whose due date is before today, ordered by ID.
func (s Store) OverdueLoans(ctx context.Context, today time.Time) (librarystore.Loans, error) {
	observer, ctx := s.observe(ctx, operationOverdueLoans)

	loans, err := s.selectLoans(ctx, s.db, operationOverdueLoans, isActive(), goqu.C(colDueDate).Lt(dateArg(today)))
	if err != nil {
		return nil, observer.finishError(err)
	}

	observer.finishSuccess(len(loans))

	return loans, nil
}

// CountActiveLoans returns the number of loans that are not returned yet.
func (s Store) CountActiveLoans(ctx context.Context) (int, error) {
	observer, ctx := s.observe(ctx, operationCountActiveLoans)

	count, err := s.countRows(ctx, tableLoans, isActive())
	if err != nil {
		return 0, observer.finishError(err)
	}

	observer.finishSuccess(1)

	return count, nil
}

// CountOverdueLoans returns the number of active loans whose due date is before today.
func (s Store) CountOverdueLoans(ctx context.Context, today time.Time) (int, error) {
	observer, ctx := s.observe(ctx, operationCountOverdueLoans)

	count, err := s.countRows(ctx, tableLoans, isActive(), goqu.C(colDueDate).Lt(dateArg(today)))
	if err != nil {
		return 0, observer.finishError(err)
	}

	observer.finishSuccess(1)

	return count, nil
}

// AppendLoan inserts a new active loan if the member still has exactly expectedActiveLoans active loans.
//
// The member row is locked and the active loans are counted again inside the same transaction as the insert,
// so two concurrent issuances for the same member can not both succeed.
// If the count changed since the caller read it, ErrConcurrencyConflict is returned and nothing is written.
func (s Store) AppendLoan(ctx context.Context, loan *librarystore.Loan, expectedActiveLoans int) error {
	observer, ctx := s.observe(
		ctx,
		operationAppendLoan,
		spanAttrEntityID, strconv.FormatInt(loan.MemberID, 10),
		logAttrExpectedActive, strconv.Itoa(expectedActiveLoans),
	)

	loan.ApplyDefaultDates(librarystore.Today())

	err := s.runInTx(ctx, operationAppendLoan, func(ctx context.Context, tx adapters.DBTx) error {
		if err := s.lockMemberIn(ctx, tx, loan.MemberID); err != nil {
			return err
		}

		actual, err := s.activeLoansCountIn(ctx, tx, loan.MemberID)
		if err != nil {
			return err
		}

		if actual != expectedActiveLoans {
			s.logWarn(ctx, logMsgConcurrencyConflict,
				logAttrMemberID, loan.MemberID,
				logAttrExpectedActive, expectedActiveLoans,
				logAttrActualActive, actual,
			)

			return librarystore.ErrConcurrencyConflict
		}

		id, err := s.insertIn(ctx, tx, tableLoans, loanRecord(loan))
		if err != nil {
			if isUniqueViolation(err) {
				s.logWarn(ctx, logMsgConcurrencyConflict, logAttrMemberID, loan.MemberID, logAttrError, err.Error())
				return errors.Join(librarystore.ErrConcurrencyConflict, librarystore.ErrExecutingStatementFailed)
			}

			return err
		}

		loan.ID = id
		return nil
	})

	if err != nil {
		return observer.finishError(err)
	}

	observer.finishSuccess(1)

	return nil
}

// CloseLoan sets the return date and the fine of an active loan.
// If the loan does not exist or was already returned, ErrConcurrencyConflict is returned and nothing is written.
func (s Store) CloseLoan(ctx context.Context, loanID int64, returnDate time.Time, fine float64) error {
	observer, ctx := s.observe(ctx, operationCloseLoan, spanAttrEntityID, strconv.FormatInt(loanID, 10))

	sqlQuery, args, buildErr := s.builder().
		Update(tableLoans).
		Set(goqu.Record{
			colReturnDate: dateArg(returnDate),
			colFineAmount: fine,
		}).
		Where(goqu.C(colID).Eq(loanID), isActive()).
		Prepared(true).
		ToSQL()

	stmt, err := s.toStatement(ctx, actionUpdate+tableLoans, sqlQuery, args, buildErr)
	if err != nil {
		return observer.finishError(err)
	}

	err = s.runInTx(ctx, operationCloseLoan, func(ctx context.Context, tx adapters.DBTx) error {
		result, execErr := s.execIn(ctx, tx, stmt)
		if execErr != nil {
			return classify(librarystore.ErrExecutingStatementFailed, execErr)
		}

		affected, rowsErr := s.rowsAffected(ctx, result)
		if rowsErr != nil {
			return rowsErr
		}

		if affected == 0 {
			s.logWarn(ctx, logMsgConcurrencyConflict, logAttrLoanID, loanID)
			return librarystore.ErrConcurrencyConflict
		}

		return nil
	})

	if err != nil {
		return observer.finishError(err)
	}

	observer.finishSuccess(1)

	return nil
}

func (s Store) selectLoans(
	ctx context.Context,
	q adapters.DBQuerier,
	action string,
	where ...exp.Expression,
) (librarystore.Loans, error) {

	sqlQuery, args, buildErr := s.builder().
		From(tableLoans).
		Select(loanColumns...).
		Where(where...).
		Order(goqu.C(colID).Asc()).
		Prepared(true).
		ToSQL()

	stmt, err := s.toStatement(ctx, actionSelect+tableLoans+" ("+action+")", sqlQuery, args, buildErr)
	if err != nil {
		return nil, err
	}

	return queryList(ctx, s, q, stmt, decodeLoan)
}

func (s Store) activeLoansCountIn(ctx context.Context, q adapters.DBQuerier, memberID int64) (int, error) {
	sqlQuery, args, buildErr := s.builder().
		From(tableLoans).
		Select(countExpression()).
		Where(goqu.C(colMemberID).Eq(memberID), isActive()).
		Prepared(true).
		ToSQL()

	stmt, err := s.toStatement(ctx, actionCount+tableLoans, sqlQuery, args, buildErr)
	if err != nil {
		return 0, err
	}

	return s.queryCount(ctx, q, stmt)
}

// lockMemberIn serializes writers that work on the same member until the transaction ends.
// Postgres and MySQL take a row lock, SQLite takes the database write lock with a no-op update.
func (s Store) lockMemberIn(ctx context.Context, tx adapters.DBTx, memberID int64) error {
	if s.supportsRowLocks() {
		sqlQuery, args, buildErr := s.builder().
			From(tableMembers).
			Select(colID).
			Where(goqu.C(colID).Eq(memberID)).
			ForUpdate(exp.Wait).
			Prepared(true).
			ToSQL()

		stmt, err := s.toStatement(ctx, actionLock+tableMembers, sqlQuery, args, buildErr)
		if err != nil {
			return err
		}

		_, err = queryList(ctx, s, tx, stmt, decodeID)
		return err
	}

	sqlQuery, args, buildErr := s.builder().
		Update(tableMembers).
		Set(goqu.Record{colID: goqu.I(colID)}).
		Where(goqu.C(colID).Eq(memberID)).
		Prepared(true).
		ToSQL()

	stmt, err := s.toStatement(ctx, actionLock+tableMembers, sqlQuery, args, buildErr)
	if err != nil {
		return err
	}

	if _, execErr := s.execIn(ctx, tx, stmt); execErr != nil {
		return classify(librarystore.ErrExecutingStatementFailed, execErr)
	}

	return nil
}
