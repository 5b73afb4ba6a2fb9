package nmea

type parseFunc func(f *Frame) (Sentence, error)

// parsers is indexed by SentenceType.
var parsers = [typeCount]parseFunc{
	TypeAAM: parseAAM,
	TypeALM: parseALM,
	TypeAPA: parseAPA,
	TypeAPB: parseAPB,
	TypeBOD: parseBOD,
	TypeBWC: parseBWC,
	TypeBWW: parseBWW,
	TypeDBK: parseDBK,
	TypeDBS: parseDBS,
	TypeDPT: parseDPT,
	TypeGBS: parseGBS,
	TypeGGA: parseGGA,
	TypeGLL: parseGLL,
	TypeGNS: parseGNS,
	TypeGSA: parseGSA,
	TypeGST: parseGST,
	TypeGSV: parseGSV,
	TypeHDT: parseHDT,
	TypeMDA: parseMDA,
	TypeMTW: parseMTW,
	TypeMWV: parseMWV,
	TypeRMC: parseRMC,
	TypeRMZ: parseRMZ,
	TypeTTM: parseTTM,
	TypeTXT: parseTXT,
	TypeVHW: parseVHW,
	TypeVTG: parseVTG,
	TypeWNC: parseWNC,
	TypeZDA: parseZDA,
	TypeZFO: parseZFO,
	TypeZTG: parseZTG,
}

// Parser decodes lines into records for the sentence types it was built
// with. A Parser is immutable and safe for concurrent use.
type Parser struct {
	caps  Capabilities
	table map[string]SentenceType
}

// NewParser builds a Parser for caps. Types outside caps fail with
// ErrUnsupported even when a decoder exists for them.
func NewParser(caps Capabilities) *Parser {
	p := &Parser{caps: caps & CapAll, table: make(map[string]SentenceType)}
	for _, t := range p.caps.Types() {
		p.table[t.String()] = t
	}
	return p
}

var defaultParser = NewParser(CapAll)

// Parse decodes line with every supported sentence type enabled.
func Parse(line string) (Sentence, error) {
	return defaultParser.Parse(line)
}

func (p *Parser) Capabilities() Capabilities { return p.caps }

// Supports reports whether code (e.g. "GGA") is enabled.
func (p *Parser) Supports(code string) bool {
	_, ok := p.table[code]
	return ok
}

// Parse frames line and decodes it.
func (p *Parser) Parse(line string) (Sentence, error) {
	f, err := ParseFrame(line)
	if err != nil {
		return nil, err
	}
	return p.ParseFrame(&f)
}

// ParseFrame decodes an already framed sentence.
func (p *Parser) ParseFrame(f *Frame) (Sentence, error) {
	t, ok := p.table[f.Code()]
	if !ok {
		return nil, &SentenceError{Talker: f.Talker(), Code: f.Code(), Err: ErrUnsupported}
	}
	return parsers[t](f)
}
