package service

import (
	"testing"
	"time"

	"github.com/DukeRupert/tesis/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func reviews() []domain.Review {
	return []domain.Review{
		{ID: 1, StudentCode: "2019-100", StudentName: "Óscar Núñez", SubmittedAt: day(3)},
		{ID: 2, StudentCode: "2020-200", StudentName: "Ana Rojas", SubmittedAt: day(1)},
		{ID: 3, StudentCode: "2019-101", StudentName: "Nadia Ortiz", Title: "Redes neuronales", SubmittedAt: day(2)},
	}
}

func ids(rs []domain.Review) []int64 {
	out := make([]int64, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestReviewQuery_SearchByStudentCode(t *testing.T) {
	got := ReviewQuery(ListParams{Search: "2019"}).Apply(reviews())
	assert.Equal(t, []int64{1, 3}, ids(got))
}

func TestReviewQuery_SearchIgnoresAccents(t *testing.T) {
	got := ReviewQuery(ListParams{Search: "nunez"}).Apply(reviews())
	assert.Equal(t, []int64{1}, ids(got))

	got = ReviewQuery(ListParams{Search: "NEURONALES"}).Apply(reviews())
	assert.Equal(t, []int64{3}, ids(got))
}

func TestReviewQuery_SortByDate(t *testing.T) {
	asc := ReviewQuery(ListParams{Sort: SortDate}).Apply(reviews())
	assert.Equal(t, []int64{2, 3, 1}, ids(asc))

	desc := ReviewQuery(ListParams{Sort: SortDate, Desc: true}).Apply(reviews())
	assert.Equal(t, []int64{1, 3, 2}, ids(desc))
}

func TestReviewQuery_UnknownSortKeepsSourceOrder(t *testing.T) {
	q := ReviewQuery(ListParams{Sort: "bogus", Desc: true})

	assert.Empty(t, q.Sort)
	assert.False(t, q.Desc)
	assert.Equal(t, []int64{1, 2, 3}, ids(q.Apply(reviews())))
}

func TestStudentQuery_SpanishCollation(t *testing.T) {
	students := []domain.Student{
		{Code: "3", FirstName: "Luis", LastName: "Ñahui"},
		{Code: "1", FirstName: "Rosa", LastName: "Nuñez"},
		{Code: "2", FirstName: "Eva", LastName: "Oré"},
		{Code: "4", FirstName: "Juan", LastName: "Ávila"},
	}

	got := StudentQuery(ListParams{Sort: SortName}).Apply(students)

	require.Len(t, got, 4)
	var codes []string
	for _, s := range got {
		codes = append(codes, s.Code)
	}
	assert.Equal(t, []string{"4", "1", "3", "2"}, codes, "Á sorts with A, Ñ after N and before O")
}

func TestCommissionQuery_MatchesMembers(t *testing.T) {
	commissions := []domain.Commission{
		{ID: 1, Name: "Terna A", Members: []domain.CommissionMember{{ProfessorName: "Quispe"}}},
		{ID: 2, Name: "Terna B", Members: []domain.CommissionMember{{ProfessorName: "Mamani"}}},
	}

	got := CommissionQuery(ListParams{Search: "mamani"}).Apply(commissions)

	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
}

func TestQueryKey_ChangesWithSearchAndSort(t *testing.T) {
	base := LogQuery(ListParams{Search: "login", Sort: SortDate})

	assert.Equal(t, base.Key(), LogQuery(ListParams{Search: " LOGIN ", Sort: SortDate}).Key())
	assert.NotEqual(t, base.Key(), LogQuery(ListParams{Search: "login", Sort: SortDate, Desc: true}).Key())
	assert.NotEqual(t, base.Key(), LogQuery(ListParams{Search: "logout", Sort: SortDate}).Key())
}

func TestQueryKey_AccentVariantsMatch(t *testing.T) {
	accented := ReviewQuery(ListParams{Search: "Núñez"})
	plain := ReviewQuery(ListParams{Search: "nunez"})

	assert.Equal(t, ids(accented.Apply(reviews())), ids(plain.Apply(reviews())))
	assert.Equal(t, accented.Key(), plain.Key())
}

func TestFold(t *testing.T) {
	assert.Equal(t, "nunez", fold("  Núñez "))
	assert.Equal(t, "cajamarca", fold("CAJAMARCA"))
}
