package mmlcd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(from, to int) []int {
	var s []int
	for i := from; i <= to; i++ {
		s = append(s, i)
	}
	return s
}

func TestTierIDs(t *testing.T) {
	dc := append(seq(136, 149), 154, 155)
	assert.Equal(t, dc, DoubleCompressed.IDs())
	assert.Equal(t, seq(101, 115), Compressed.IDs())
	assert.Equal(t, append(seq(74, 81), 90, 91), Uncompressed.IDs())

	for _, tier := range Tiers() {
		assert.Len(t, tier.IDs(), tier.Capacity, tier.Name)
	}
}

func TestTierNextBoundaries(t *testing.T) {
	cases := []struct {
		tier Tier
		id   int
		next int
	}{
		{DoubleCompressed, 136, 137},
		{DoubleCompressed, 148, 149},
		{DoubleCompressed, 149, 154},
		{DoubleCompressed, 154, 155},
		{DoubleCompressed, 155, 156},
		{Compressed, 101, 102},
		{Compressed, 114, 115},
		{Compressed, 115, 116},
		{Uncompressed, 80, 81},
		{Uncompressed, 81, 90},
		{Uncompressed, 90, 91},
		{Uncompressed, 91, 92},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.next, tc.tier.Next(tc.id), "%s after %d", tc.tier.Name, tc.id)
	}
}

func TestTierContains(t *testing.T) {
	for id := 150; id <= 153; id++ {
		assert.False(t, DoubleCompressed.Contains(id), "id %d", id)
	}
	for id := 82; id <= 89; id++ {
		assert.False(t, Uncompressed.Contains(id), "id %d", id)
	}
	assert.True(t, DoubleCompressed.Contains(149))
	assert.True(t, DoubleCompressed.Contains(154))
	assert.False(t, Compressed.Contains(100))
	assert.False(t, Compressed.Contains(116))
}

func TestTierByName(t *testing.T) {
	tier, ok := TierByName(" Compressed ")
	require.True(t, ok)
	assert.Equal(t, Compressed, tier)
	_, ok = TierByName("mtr3")
	assert.False(t, ok)
}

func TestTableFileName(t *testing.T) {
	assert.Equal(t, "mm_table_88.bin", TableFileName("mm_table", 136))
	assert.Equal(t, "mm_table_4a.bin", TableFileName("mm_table", 74))
	assert.Equal(t, "mm_table_65.bin", TableFileName("mm_table", 101))
	assert.Equal(t, "x_0a.bin", TableFileName("x", 10))
}

func TestAllocateNeverEmitsGap(t *testing.T) {
	npas := seq(200, 260)
	for _, tier := range Tiers() {
		assigned, dropped := Allocate(tier, npas)
		require.Len(t, assigned, tier.Capacity, tier.Name)
		require.Equal(t, npas[tier.Capacity:], dropped, tier.Name)
		for i, a := range assigned {
			assert.True(t, tier.Contains(a.ID), "%s emitted %d", tier.Name, a.ID)
			assert.Equal(t, npas[i], a.NPA)
			assert.Equal(t, tier.IDs()[i], a.ID)
		}
	}
}

func TestAllocateExactCapacity(t *testing.T) {
	npas := seq(300, 315)
	assigned, dropped := Allocate(DoubleCompressed, npas)
	assert.Len(t, assigned, 16)
	assert.Empty(t, dropped)
	assert.Equal(t, 155, assigned[15].ID)
	assert.Equal(t, 154, assigned[14].ID)
	assert.Equal(t, 149, assigned[13].ID)
}

func TestAllocateShortList(t *testing.T) {
	assigned, dropped := Allocate(Uncompressed, []int{408, 415})
	assert.Equal(t, []Assignment{
		{Tier: Uncompressed, ID: 74, NPA: 408},
		{Tier: Uncompressed, ID: 75, NPA: 415},
	}, assigned)
	assert.Nil(t, dropped)

	assigned, dropped = Allocate(Compressed, nil)
	assert.Empty(t, assigned)
	assert.Empty(t, dropped)
}

func TestAllocateDroppedDoesNotAliasInput(t *testing.T) {
	npas := seq(200, 212)
	_, dropped := Allocate(Uncompressed, npas)
	require.Equal(t, []int{210, 211, 212}, dropped)

	dropped[0] = 999
	assert.Equal(t, 210, npas[10])

	_, again := Allocate(Uncompressed, npas)
	assert.Equal(t, []int{210, 211, 212}, again)
}

func TestWorkingList(t *testing.T) {
	assert.Equal(t, []int{408, 650, 415}, WorkingList([]int{650, 415, 408, 650}, 408))
	assert.Equal(t, []int{650, 415}, WorkingList([]int{650, 415, 650}, 408))
	assert.Equal(t, []int{408}, WorkingList([]int{408, 408}, 408))
	assert.Empty(t, WorkingList(nil, 408))
}
