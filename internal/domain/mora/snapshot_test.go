package mora

import (
	"testing"
	"time"

	"lokl-mora-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArrearsSnapshot(t *testing.T) {
	now := day(2024, time.June, 1)
	owing := subscription(" owing@x.co ", 1000,
		unpaid(day(2024, time.February, 10), 200),
		unpaid(day(2024, time.January, 10), 100),
		unpaid(day(2024, time.May, 20), 999),
	)
	settled := subscription("settled@x.co", 1000, paidAt(day(2024, time.January, 10), 100, day(2024, time.January, 10)))
	anonymous := subscription("  ", 1000, unpaid(day(2024, time.January, 10), 100))
	declined := subscription("declined@x.co", 1000, unpaid(day(2024, time.January, 10), 100))
	declined.Status = domain.InvestmentStatusDeclined
	zero := subscription("zero@x.co", 1000, unpaid(day(2024, time.January, 10), 0))

	rows := BuildArrearsSnapshot([]domain.Investment{owing, settled, anonymous, declined, zero}, now)
	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, "owing@x.co", r.Email)
	assert.Equal(t, "300", r.MoraAmount.String())
	assert.Equal(t, day(2024, time.January, 10), r.MoraStartDate)
	assert.Equal(t, owing.ID, r.InvestmentID)
	assert.Equal(t, owing.ProjectID, r.ProjectID)
}

func TestBuildArrearsSnapshot_Empty(t *testing.T) {
	assert.Empty(t, BuildArrearsSnapshot(nil, day(2024, time.June, 1)))
}
