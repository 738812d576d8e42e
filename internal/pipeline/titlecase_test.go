package pipeline

import "testing"

func TestTitlecase(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "all caps words", input: "ROYAL BRITISH LEGION CLUB", want: "Royal British Legion Club"},
		{name: "honorific dot possessive acronym", input: "ST. MARY'S FC", want: "St. Mary's FC"},
		{name: "vowel-less acronym fallback", input: "BBC", want: "BBC"},
		{name: "function words lowered", input: "THE CLUB OF THE YEAR", want: "The Club of the Year"},
		{name: "all lowercase", input: "the village hall", want: "The Village Hall"},
		{name: "ordinal lowered", input: "1ST AIRDRIE SCOUTS", want: "1st Airdrie Scouts"},
		{name: "contraction", input: "DON'T STOP NETBALL", want: "Don't Stop Netball"},
		{name: "uppercase abbreviation", input: "ABERTAWE AFC", want: "Abertawe AFC"},
		{name: "mixed alnum abbreviation", input: "U3A SWIMMING", want: "U3A Swimming"},
		{name: "welsh short words", input: "CLWB PEL-DROED", want: "Clwb Pel-Droed"},
		{name: "small word and lowered", input: "QUEENS PARK AND DISTRICT CLUB", want: "Queens Park and District Club"},
		{name: "small words for and", input: "CLUB FOR BOYS AND GIRLS", want: "Club for Boys and Girls"},
		{name: "leading small word forced upper", input: "AND SO IT GOES", want: "And So It Goes"},
		{name: "hyphen segments capitalized", input: "STOCKTON-ON-TEES ARCHERS", want: "Stockton-On-Tees Archers"},
		{name: "parenthesised word", input: "GOLF CLUB (SENIORS)", want: "Golf Club (Seniors)"},
		{name: "preserved suffix casing", input: "ACME SPORTS LTD", want: "Acme Sports Ltd"},
		{name: "roman numeral", input: "RESERVES XI", want: "Reserves XI"},
		{name: "mixed case returned unchanged", input: "Llandudno FC Seniors", want: "Llandudno FC Seniors"},
		{name: "no letters returned unchanged", input: "1066", want: "1066"},
		{name: "empty", input: "", want: ""},
		{name: "whitespace trimmed", input: "  YMCA  ", want: "YMCA"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Titlecase(tc.input); got != tc.want {
				t.Fatalf("Titlecase(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestTitlecaseFirstCharacterAlwaysUpper(t *testing.T) {
	// "the" is a forced-lowercase word, but the result must still start
	// with a capital.
	if got := Titlecase("THE WANDERERS"); got != "The Wanderers" {
		t.Fatalf("got %q", got)
	}
}
