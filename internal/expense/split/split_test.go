package split

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func users(ids ...int64) []SplitInput {
	out := make([]SplitInput, len(ids))
	for i, id := range ids {
		out[i] = SplitInput{UserID: id}
	}
	return out
}

func TestFactory(t *testing.T) {
	factory := NewSplitStrategyFactory()

	for _, tt := range []struct {
		in   SplitType
		want SplitType
	}{
		{"", SplitTypeManual},
		{SplitTypeManual, SplitTypeManual},
		{SplitTypeEven, SplitTypeEven},
		{SplitTypePercentage, SplitTypePercentage},
	} {
		s, err := factory.Create(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, s.Type())
	}

	_, err := factory.Create("EXACT")
	assert.ErrorIs(t, err, ErrUnknownSplitType)
}

func TestEvenStrategy(t *testing.T) {
	tests := []struct {
		name    string
		total   float64
		payer   int64
		inputs  []SplitInput
		want    []SplitOutput
		wantErr error
	}{
		{
			name:   "payer listed",
			total:  90,
			payer:  1,
			inputs: users(1, 2, 3),
			want:   []SplitOutput{{UserID: 2, Amount: 30}, {UserID: 3, Amount: 30}},
		},
		{
			name:   "leftover cent goes to first debtor",
			total:  100,
			payer:  1,
			inputs: users(1, 2, 3),
			want:   []SplitOutput{{UserID: 2, Amount: 33.34}, {UserID: 3, Amount: 33.33}},
		},
		{
			name:   "payer not listed",
			total:  10,
			payer:  1,
			inputs: users(2, 3, 4),
			want:   []SplitOutput{{UserID: 2, Amount: 3.34}, {UserID: 3, Amount: 3.33}, {UserID: 4, Amount: 3.33}},
		},
		{
			name:   "only the payer",
			total:  10,
			payer:  1,
			inputs: users(1),
			want:   []SplitOutput{},
		},
		{
			name:    "nobody",
			total:   10,
			payer:   1,
			wantErr: ErrNoParticipants,
		},
		{
			name:    "duplicate",
			total:   10,
			payer:   1,
			inputs:  users(2, 2),
			wantErr: ErrDuplicateParticipant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := (&EvenStrategy{}).Calculate(tt.total, tt.payer, tt.inputs)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPercentageStrategy(t *testing.T) {
	tests := []struct {
		name    string
		total   float64
		inputs  []SplitInput
		want    []SplitOutput
		wantErr error
	}{
		{
			name:  "payer keeps their part",
			total: 200,
			inputs: []SplitInput{
				{UserID: 1, Percentage: f(50)},
				{UserID: 2, Percentage: f(25)},
				{UserID: 3, Percentage: f(25)},
			},
			want: []SplitOutput{{UserID: 2, Amount: 50}, {UserID: 3, Amount: 50}},
		},
		{
			name:  "last debtor absorbs rounding",
			total: 10,
			inputs: []SplitInput{
				{UserID: 2, Percentage: f(33.33)},
				{UserID: 3, Percentage: f(33.33)},
				{UserID: 4, Percentage: f(33.34)},
			},
			want: []SplitOutput{{UserID: 2, Amount: 3.33}, {UserID: 3, Amount: 3.33}, {UserID: 4, Amount: 3.34}},
		},
		{
			name:    "sum below 100",
			total:   10,
			inputs:  []SplitInput{{UserID: 2, Percentage: f(40)}, {UserID: 3, Percentage: f(50)}},
			wantErr: ErrInvalidPercentages,
		},
		{
			name:    "missing percentage",
			total:   10,
			inputs:  []SplitInput{{UserID: 2, Percentage: f(100)}, {UserID: 3}},
			wantErr: ErrMissingPercentage,
		},
		{
			name:    "out of range",
			total:   10,
			inputs:  []SplitInput{{UserID: 2, Percentage: f(120)}, {UserID: 3, Percentage: f(-20)}},
			wantErr: ErrPercentageOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := (&PercentageStrategy{}).Calculate(tt.total, 1, tt.inputs)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestManualStrategy(t *testing.T) {
	s := &ManualStrategy{}

	got, err := s.Calculate(50, 1, []SplitInput{
		{UserID: 1, Amount: f(10)},
		{UserID: 2, Amount: f(12.346)},
		{UserID: 3, Amount: f(0)},
	})
	require.NoError(t, err)
	assert.Equal(t, []SplitOutput{{UserID: 2, Amount: 12.35}, {UserID: 3, Amount: 0}}, got)

	got, err = s.Calculate(50, 1, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = s.Calculate(50, 1, []SplitInput{{UserID: 2}})
	assert.ErrorIs(t, err, ErrMissingAmount)

	_, err = s.Calculate(50, 1, []SplitInput{{UserID: 2, Amount: f(-1)}})
	assert.ErrorIs(t, err, ErrNegativeAmount)
}
