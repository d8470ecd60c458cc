package aggregator

import (
	"fmt"
	"testing"
	"time"

	"convo-insights-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reasonRows() []types.ConversationRow {
	return []types.ConversationRow{
		newRow("C1", ago(1*time.Hour), reason("Billing - Refund", "")),
		newRow("C2", ago(2*time.Hour), reason("billing -  refund", "")),
		newRow("C3", ago(3*time.Hour), reason("", "Billing - Refund")),
		newRow("C4", ago(4*time.Hour), reason("Shipping - Late", "Billing")),
		newRow("C5", ago(5*time.Hour), reason("Billing - Invoice", "")),
		newRow("C6", ago(6*time.Hour)),
		newRow("P1", ago(30*time.Hour), reason("Billing - Refund", "")),
		newRow("P2", ago(40*time.Hour), reason("Shipping - Late", "")),
		newRow("P3", ago(47*time.Hour), reason("Shipping - Late", "")),
		newRow("X1", ago(72*time.Hour), reason("Billing - Refund", "")),
	}
}

func TestContactReasons(t *testing.T) {
	got, err := ContactReasons(reasonRows(), types.Window24h, now, 0)
	require.NoError(t, err)

	assert.Equal(t, 6, got.Total)
	assert.Equal(t, 3, got.PreviousTotal)
	assert.Equal(t, 4, got.ReasonCount)
	assert.Len(t, got.Labels, 24)
	require.Len(t, got.Entries, 4)

	refund := got.Entries[0]
	assert.Equal(t, "Billing - Refund", refund.Reason)
	assert.Equal(t, 3, refund.Count)
	assert.InDelta(t, 50, refund.Percentage, 1e-9)
	assert.Equal(t, []string{"C1", "C2", "C3"}, refund.RecentTickets)
	assert.Equal(t, 1, refund.PreviousCount)
	require.NotNil(t, refund.DeltaPct)
	assert.InDelta(t, 200, *refund.DeltaPct, 1e-9)
	assert.Equal(t, 1, refund.Sparkline[22])

	assert.Equal(t, "Billing - Invoice", got.Entries[1].Reason)
	assert.Nil(t, got.Entries[1].DeltaPct)

	shipping := got.Entries[2]
	assert.Equal(t, "Shipping - Late", shipping.Reason)
	assert.Equal(t, 2, shipping.PreviousCount)
	assert.InDelta(t, -50, *shipping.DeltaPct, 1e-9)

	assert.Equal(t, types.UnspecifiedReason, got.Entries[3].Reason)
}

func TestContactReasonsPartitionWindow(t *testing.T) {
	var rows []types.ConversationRow
	for i := 0; i < 40; i++ {
		rows = append(rows, newRow(fmt.Sprintf("K%d", i), ago(time.Duration(i)*time.Hour), reason(fmt.Sprintf("Reason %d", i%12), "")))
	}
	rows = append(rows, newRow("blank", ago(time.Hour)))

	got, err := ContactReasons(rows, types.Window7d, now, 50)
	require.NoError(t, err)
	assert.Equal(t, 41, got.Total)
	assert.Equal(t, 13, got.ReasonCount)
	require.Len(t, got.Entries, 13)

	sum := 0
	for _, e := range got.Entries {
		sum += e.Count
	}
	assert.Equal(t, got.Total, sum)

	limited, err := ContactReasons(rows, types.Window7d, now, -1)
	require.NoError(t, err)
	assert.Len(t, limited.Entries, 10)
	assert.Equal(t, 13, limited.ReasonCount)
}

func TestContactReasonsLimitCap(t *testing.T) {
	var rows []types.ConversationRow
	for i := 0; i < 60; i++ {
		rows = append(rows, newRow(fmt.Sprintf("K%d", i), ago(time.Duration(i)*time.Minute), reason(fmt.Sprintf("Reason %d", i), "")))
	}
	got, err := ContactReasons(rows, types.Window7d, now, 500)
	require.NoError(t, err)
	assert.Equal(t, 60, got.ReasonCount)
	assert.Len(t, got.Entries, 50)
}

func TestContactReasonsRecentTicketsCap(t *testing.T) {
	var rows []types.ConversationRow
	for i := 0; i < 7; i++ {
		rows = append(rows, newRow(fmt.Sprintf("K%d", i), ago(time.Duration(i)*time.Hour), reason("Login", "")))
	}
	got, err := ContactReasons(rows, types.Window24h, now, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"K0", "K1", "K2", "K3", "K4"}, got.Entries[0].RecentTickets)
}

func TestContactReasonsInvalidWindow(t *testing.T) {
	_, err := ContactReasons(reasonRows(), types.Window("12h"), now, 10)
	assert.Error(t, err)
}

func TestContactReasonsV2(t *testing.T) {
	got, err := ContactReasonsV2(reasonRows(), types.Window24h, now, 0)
	require.NoError(t, err)

	assert.Equal(t, 6, got.Total)
	assert.Equal(t, 3, got.TopicCount)
	require.Len(t, got.Topics, 3)

	billing := got.Topics[0]
	assert.Equal(t, "Billing", billing.Reason)
	assert.Equal(t, 4, billing.Count)
	assert.Equal(t, 1, billing.PreviousCount)
	assert.InDelta(t, 300, *billing.DeltaPct, 1e-9)
	require.Len(t, billing.SubReasons, 2)
	assert.Equal(t, "Refund", billing.SubReasons[0].Reason)
	assert.Equal(t, 3, billing.SubReasons[0].Count)
	assert.InDelta(t, 75, billing.SubReasons[0].Percentage, 1e-9)
	assert.Equal(t, "Invoice", billing.SubReasons[1].Reason)

	assert.Equal(t, "Shipping", got.Topics[1].Reason)
	assert.Equal(t, "Late", got.Topics[1].SubReasons[0].Reason)

	unspecified := got.Topics[2]
	assert.Equal(t, types.UnspecifiedReason, unspecified.Reason)
	assert.Equal(t, types.UnspecifiedReason, unspecified.SubReasons[0].Reason)

	sum := 0
	for _, topic := range got.Topics {
		sum += topic.Count
	}
	assert.Equal(t, got.Total, sum)
}
