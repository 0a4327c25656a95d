package sqlengine

import (
	"context"
	"strconv"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
	"github.com/AntonStoeckl/library-circulation-go/librarystore/sqlengine/internal/adapters"
)

const (
	operationSaveMember          = "save_member"
	operationMemberByID          = "member_by_id"
	operationSearchMembersByName = "search_members_by_name"
	operationAllMembers          = "all_members"
	operationCountMembers        = "count_members"
)

// SaveMember inserts the member if it has no ID yet and assigns the generated ID, otherwise it updates the row.
// A zero JoinDate is set to today before the insert.
func (s Store) SaveMember(ctx context.Context, member *librarystore.Member) error {
	observer, ctx := s.observe(ctx, operationSaveMember)

	if member.JoinDate.IsZero() {
		member.JoinDate = librarystore.Today()
	}

	record := goqu.Record{
		colName:       member.Name,
		colNationalID: member.NationalID,
		colPhone:      nullable(member.Phone),
		colJoinDate:   dateArg(member.JoinDate),
	}

	err := s.runInTx(ctx, operationSaveMember, func(ctx context.Context, tx adapters.DBTx) error {
		if member.ID == 0 {
			id, err := s.insertIn(ctx, tx, tableMembers, record)
			if err != nil {
				return err
			}

			member.ID = id
			return nil
		}

		_, err := s.updateIn(ctx, tx, tableMembers, member.ID, record)
		return err
	})

	if err != nil {
		return observer.finishError(err)
	}

	member.JoinDate = librarystore.DateOf(member.JoinDate)
	observer.finishSuccess(1)

	return nil
}

// MemberByID returns the member with the given ID. found is false if there is none.
func (s Store) MemberByID(ctx context.Context, id int64) (librarystore.Member, bool, error) {
	observer, ctx := s.observe(ctx, operationMemberByID, spanAttrEntityID, strconv.FormatInt(id, 10))

	members, err := s.selectMembers(ctx, operationMemberByID, goqu.C(colID).Eq(id))
	if err != nil {
		return librarystore.Member{}, false, observer.finishError(err)
	}

	if len(members) == 0 {
		observer.finishSuccess(0)
		return librarystore.Member{}, false, nil
	}

	observer.finishSuccess(1)

	return members[0], true, nil
}

// SearchMembersByName returns all members whose name contains text, ignoring case.
func (s Store) SearchMembersByName(ctx context.Context, text string) (librarystore.Members, error) {
	observer, ctx := s.observe(ctx, operationSearchMembersByName)

	members, err := s.selectMembers(ctx, operationSearchMembersByName, s.containsIgnoringCase(colName, text))
	if err != nil {
		return nil, observer.finishError(err)
	}

	observer.finishSuccess(len(members))

	return members, nil
}

// AllMembers returns every member ordered by ID.
func (s Store) AllMembers(ctx context.Context) (librarystore.Members, error) {
	observer, ctx := s.observe(ctx, operationAllMembers)

	members, err := s.selectMembers(ctx, operationAllMembers)
	if err != nil {
		return nil, observer.finishError(err)
	}

	observer.finishSuccess(len(members))

	return members, nil
}

// CountMembers returns the number of registered members.
func (s Store) CountMembers(ctx context.Context) (int, error) {
	observer, ctx := s.observe(ctx, operationCountMembers)

	count, err := s.countRows(ctx, tableMembers)
	if err != nil {
		return 0, observer.finishError(err)
	}

	observer.finishSuccess(1)

	return count, nil
}

func (s Store) selectMembers(ctx context.Context, action string, where ...exp.Expression) (librarystore.Members, error) {
	sqlQuery, args, buildErr := s.builder().
		From(tableMembers).
		Select(memberColumns...).
		Where(where...).
		Order(goqu.C(colID).Asc()).
		Prepared(true).
		ToSQL()

	stmt, err := s.toStatement(ctx, actionSelect+tableMembers+" ("+action+")", sqlQuery, args, buildErr)
	if err != nil {
		return nil, err
	}

	return queryList(ctx, s, s.db, stmt, decodeMember)
}
