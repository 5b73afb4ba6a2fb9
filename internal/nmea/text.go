package nmea

// TXT carries one text message page.
type TXT struct {
	Meta
	Total      int
	Number     int
	Identifier Opt[int]
	Text       Opt[string]
}

func parseTXT(f *Frame) (Sentence, error) {
	r, err := newFieldReader(f, TypeTXT, 4)
	if err != nil {
		return nil, err
	}
	s := TXT{
		Meta:       r.meta(),
		Total:      r.required(0, "total", r.intRange(0, "total", 1, 99)),
		Number:     r.required(1, "number", r.intRange(1, "number", 1, 99)),
		Identifier: r.intRange(2, "identifier", 0, 99),
		Text:       r.text(3, "text"),
	}
	return r.done(s)
}
