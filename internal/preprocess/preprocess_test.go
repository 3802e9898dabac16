package preprocess

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/moneyview/internal/concurrent"
	"fjacquet/moneyview/internal/logging"
	"fjacquet/moneyview/internal/narrative"
)

const rawStatement = ":20:STARTUMS\r\n" +
	":25:15091704/3000185000\r\n" +
	":28C:0\r\n" +
	":60F:D240716EUR757,99\r\n" +
	":61:2407160716DR104,50NDDTKREF+\r\n" +
	":86:105?00Basislastschrift?10931?20EREF+390773481601010055\r\n" +
	"?21KREF+2024071094085283092700?22000000000023?23MREF+0035-5250\r\n" +
	"?24CRED+DE71ZZZ00001448453?25SVWZ+Drente, Konstantin 06 \r\n" +
	"?2624 EREF: 390773481601010055?27 MREF: 0035-5250 CRED: DE71\r\n" +
	"?28ZZZ00001448453 IBAN: DE5952?290604100006418015 BIC: GENOD\r\n" +
	"?32Ev. Kirchengemeinde Torgelo?33w?34992?60EF1EK1\r\n" +
	":62F:D240716EUR862,49\r\n" +
	"-"

var expectedLines = []string{
	":20:STARTUMS",
	":25:15091704/3000185000",
	":28C:0",
	":60F:D240716EUR757,99",
	":61:2407160716DR104,50NDDTKREF+",
	":86:999?2024071094085283092700000000000023?0035-5250?Ev. Kirchengemeinde Torgelow?Drente, Konstantin 06 24",
	":62F:D240716EUR862,49",
}

func TestNormalize_BankStatement(t *testing.T) {
	assert.Equal(t, strings.Join(expectedLines, "\n"), Normalize(rawStatement))
}

func TestPreprocessor_MatchesSequentialForm(t *testing.T) {
	logger := logging.NewMockLogger()
	pool := concurrent.NewProcessor(logger, 4, 0)
	p := New(pool, Rewrites(narrative.NewDecoder(narrative.DefaultOptions())), logger)

	out, err := p.Normalize(context.Background(), rawStatement)
	require.NoError(t, err)
	assert.Equal(t, Normalize(rawStatement), out)
	assert.True(t, logger.HasEntry("DEBUG", "Statement text normalized"))
}

func TestPreprocessor_DirectNarrativeKeepsKeywords(t *testing.T) {
	p := New(nil, Rewrites(nil), nil)

	out, err := p.Normalize(context.Background(), rawStatement)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, len(expectedLines))
	assert.True(t, strings.HasPrefix(lines[5], ":86:105Basislastschrift931EREF+390773481601010055KREF+"))
	assert.True(t, strings.HasSuffix(lines[5], "BIC: GENODEF1EK1 CREN+Ev. Kirchengemeinde Torgelow"))
}

func TestPreprocessor_PreservesLineOrderOnLargeInput(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 2000; i++ {
		b.WriteString(":61:2407160716DR1,00NDDTKREF+\n")
		b.WriteString(":86:SVWZ+Zeile ")
		b.WriteString(strings.Repeat("x", i%7))
		b.WriteString("\n")
	}
	raw := b.String()

	p := New(concurrent.NewProcessor(nil, 8, 0), Rewrites(narrative.NewDecoder(narrative.DefaultOptions())), nil)
	out, err := p.Normalize(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, Normalize(raw), out)
}

func TestPreprocessor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil, Rewrites(nil), nil).Normalize(ctx, rawStatement)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalize_Empty(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
}
