package mora

import (
	"testing"
	"time"

	"lokl-mora-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func project(name string, investments ...domain.Investment) domain.Project {
	return domain.Project{ID: uuid.New(), Name: name, Investments: investments}
}

func TestOverdueByProject_Scenario(t *testing.T) {
	now := day(2024, time.June, 1)
	small := project("Small", subscription("a@x.co", 0, unpaid(day(2024, time.January, 10), 300)))
	big := project("Big", subscription("b@x.co", 0, unpaid(day(2024, time.February, 10), 700)))
	clean := project("Clean", subscription("c@x.co", 0, paidAt(day(2024, time.January, 10), 900, day(2024, time.January, 11))))

	out := OverdueByProject([]domain.Project{small, clean, big}, now, nil)
	require.Len(t, out, 2)
	assert.Equal(t, "Big", out[0].Name)
	assert.Equal(t, 700.0, out[0].Amount)
	assert.Equal(t, int64(70), out[0].Percentage)
	assert.Equal(t, "Small", out[1].Name)
	assert.Equal(t, int64(30), out[1].Percentage)
}

func TestOverdueByProject_StableTiesAndDefaults(t *testing.T) {
	now := day(2024, time.June, 1)
	first := project("", subscription("a@x.co", 0, unpaid(day(2024, time.January, 10), 100)))
	second := project("Second", subscription("b@x.co", 0, unpaid(day(2024, time.January, 10), 100)))
	third := project("Third", subscription("c@x.co", 0, unpaid(day(2024, time.January, 10), 100)))

	out := OverdueByProject([]domain.Project{first, second, third}, now, nil)
	require.Len(t, out, 3)
	assert.Equal(t, domain.UnnamedProject, out[0].Name)
	assert.Equal(t, "Second", out[1].Name)
	assert.Equal(t, "Third", out[2].Name)

	var sum int64
	for _, p := range out {
		sum += p.Percentage
	}
	assert.InDelta(t, 100, sum, 1)
}

func TestOverdueByProject_NoArrears(t *testing.T) {
	now := day(2024, time.June, 1)
	p := project("P", subscription("a@x.co", 0, unpaid(day(2024, time.May, 20), 100)))
	assert.Empty(t, OverdueByProject([]domain.Project{p}, now, nil))
	assert.Empty(t, OverdueByProject(nil, now, nil))
}

func TestOverdueByProject_YearScopeAndInvestmentFilter(t *testing.T) {
	now := day(2024, time.June, 1)
	declined := subscription("d@x.co", 0, unpaid(day(2024, time.January, 10), 5000))
	declined.Status = domain.InvestmentStatusDeclined
	oneOff := subscription("e@x.co", 0, unpaid(day(2024, time.January, 10), 5000))
	oneOff.Type = "single"
	p := project("P",
		subscription("a@x.co", 0,
			unpaid(day(2023, time.March, 10), 40),
			unpaid(day(2024, time.January, 10), 60),
		),
		declined, oneOff,
	)

	all := OverdueByProject([]domain.Project{p}, now, nil)
	require.Len(t, all, 1)
	assert.Equal(t, 100.0, all[0].Amount)

	year := 2023
	scoped := OverdueByProject([]domain.Project{p}, now, &year)
	require.Len(t, scoped, 1)
	assert.Equal(t, 40.0, scoped[0].Amount)
	assert.Equal(t, int64(100), scoped[0].Percentage)
}

func TestOverdueForInvestment(t *testing.T) {
	inv := subscription("a@x.co", 0,
		unpaid(day(2024, time.March, 10), 10),
		unpaid(day(2024, time.January, 10), 20),
		paidAt(day(2023, time.December, 10), 30, day(2024, time.February, 1)),
	)
	o := OverdueForInvestment(inv, day(2024, time.June, 1), nil)
	assert.True(t, o.HasArrears)
	assert.Equal(t, 2, o.Count)
	assert.Equal(t, "30", o.Amount.String())
	assert.Equal(t, day(2024, time.January, 10), o.EarliestDue)
}
