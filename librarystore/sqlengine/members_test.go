package sqlengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
	. "github.com/AntonStoeckl/library-circulation-go/testutil/helper" //nolint:revive
)

func Test_SaveMember_Inserts_AndMemberByIDReturnsIt(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := givenStore(t)

	// arrange
	member := FixtureMember(t, "Hermione Granger")

	// act
	err := store.SaveMember(ctxWithTimeout, &member)

	// assert
	require.NoError(t, err)
	assert.NotZero(t, member.ID)

	loaded, found, err := store.MemberByID(ctxWithTimeout, member.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, member, loaded)
}

func Test_SaveMember_DefaultsTheJoinDateToToday(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := givenStore(t)

	// arrange
	member := librarystore.Member{Name: "Ron Weasley", NationalID: "RW-1"}

	// act
	err := store.SaveMember(ctxWithTimeout, &member)

	// assert
	require.NoError(t, err)
	assert.Equal(t, librarystore.Today(), member.JoinDate)

	loaded, _, err := store.MemberByID(ctxWithTimeout, member.ID)
	require.NoError(t, err)
	assert.Equal(t, librarystore.Today(), loaded.JoinDate)
	assert.Nil(t, loaded.Phone)
}

func Test_SaveMember_UpdatesAnExistingMember(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := givenStore(t)

	// arrange
	member := GivenMemberWasSaved(t, ctxWithTimeout, store, "Luna Lovegood")
	member.Phone = nil
	member.Name = "Luna Scamander"

	// act
	err := store.SaveMember(ctxWithTimeout, &member)

	// assert
	require.NoError(t, err)

	loaded, _, err := store.MemberByID(ctxWithTimeout, member.ID)
	require.NoError(t, err)
	assert.Equal(t, "Luna Scamander", loaded.Name)
	assert.Nil(t, loaded.Phone)
}

func Test_MemberByID_NotFound_IsNoError(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := givenStore(t)

	// act
	_, found, err := store.MemberByID(ctxWithTimeout, 4711)

	// assert
	assert.NoError(t, err)
	assert.False(t, found)
}

func Test_SearchMembersByName_IsACaseInsensitiveContainsMatch(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := givenStore(t)

	// arrange
	harry := GivenMemberWasSaved(t, ctxWithTimeout, store, "Harry Potter")
	GivenMemberWasSaved(t, ctxWithTimeout, store, "Draco Malfoy")
	emile := GivenMemberWasSaved(t, ctxWithTimeout, store, "ÉMILE Zola")

	// act
	members, err := store.SearchMembersByName(ctxWithTimeout, "POTT")
	accented, accentedErr := store.SearchMembersByName(ctxWithTimeout, "émile")
	noMembers, noErr := store.SearchMembersByName(ctxWithTimeout, "Voldemort")

	// assert
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, harry.ID, members[0].ID)

	require.NoError(t, accentedErr)
	require.Len(t, accented, 1)
	assert.Equal(t, emile.ID, accented[0].ID)

	require.NoError(t, noErr)
	assert.NotNil(t, noMembers)
	assert.Empty(t, noMembers)
}

func Test_AllMembers_AreOrderedByID_AndNationalIDsMayRepeat(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := givenStore(t)

	// arrange
	first := FixtureMember(t, "Neville Longbottom")
	second := FixtureMember(t, "Neville Longbottom Jr.")
	second.NationalID = first.NationalID
	require.NoError(t, store.SaveMember(ctxWithTimeout, &first))
	require.NoError(t, store.SaveMember(ctxWithTimeout, &second), "duplicate national IDs are permitted")

	// act
	members, err := store.AllMembers(ctxWithTimeout)
	count, countErr := store.CountMembers(ctxWithTimeout)

	// assert
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, first.ID, members[0].ID)
	assert.Equal(t, second.ID, members[1].ID)

	require.NoError(t, countErr)
	assert.Equal(t, 2, count)
}

func Test_SaveAuthor_InsertsAndUpdates(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := givenStore(t)

	// arrange
	author := librarystore.Author{Name: "J. K. Rowling"}
	require.NoError(t, store.SaveAuthor(ctxWithTimeout, &author))
	author.Name = "Robert Galbraith"

	// act
	err := store.SaveAuthor(ctxWithTimeout, &author)

	// assert
	require.NoError(t, err)

	loaded, found, err := store.AuthorByID(ctxWithTimeout, author.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, author, loaded)

	_, found, err = store.AuthorByID(ctxWithTimeout, author.ID+1)
	assert.NoError(t, err)
	assert.False(t, found)
}
