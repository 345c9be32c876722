package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexBadEscape                Code = 1005

	// Синтаксические
	SynInfo               Code = 2000
	SynUnexpectedToken    Code = 2001
	SynUnexpectedTopLevel Code = 2002
	SynExpectIdentifier   Code = 2003
	SynExpectAssign       Code = 2004
	SynExpectExpression   Code = 2005
	SynUnclosedBrace      Code = 2006
	SynUnclosedBracket    Code = 2007
	SynUnclosedParen      Code = 2008
	SynUnclosedAngle      Code = 2009
	SynExpectCapsuleBody  Code = 2010
	SynLinkAfterBody      Code = 2011

	// Ошибки I/O
	IOLoadFileError Code = 4001

	// Ошибки проекта / связывания капсул
	ProjInfo              Code = 5000
	ProjUnresolvedCapsule Code = 5001
	ProjLinkCycle         Code = 5002
	ProjDuplicateCapsule  Code = 5003
	ProjUnfinishedCapsule Code = 5004
	ProjSelfLink          Code = 5005

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:                 "Unknown error",
	LexInfo:                     "Lexical information",
	LexUnknownChar:              "Unknown character",
	LexUnterminatedString:       "Unterminated string literal",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexBadNumber:                "Malformed number literal",
	LexBadEscape:                "Invalid escape sequence",
	SynInfo:                     "Syntax information",
	SynUnexpectedToken:          "Unexpected token",
	SynUnexpectedTopLevel:       "Unexpected top-level construct",
	SynExpectIdentifier:         "Expected identifier",
	SynExpectAssign:             "Expected '='",
	SynExpectExpression:         "Expected expression",
	SynUnclosedBrace:            "Unclosed brace",
	SynUnclosedBracket:          "Unclosed bracket",
	SynUnclosedParen:            "Unclosed parenthesis",
	SynUnclosedAngle:            "Unclosed type parameter list",
	SynExpectCapsuleBody:        "Expected capsule body",
	SynLinkAfterBody:            "Link must precede declarations",
	IOLoadFileError:             "I/O error",
	ProjInfo:                    "Project information",
	ProjUnresolvedCapsule:       "Unresolved capsule",
	ProjLinkCycle:               "Capsule link cycle",
	ProjDuplicateCapsule:        "Duplicate capsule name",
	ProjUnfinishedCapsule:       "Capsule build did not finish",
	ProjSelfLink:                "Capsule links itself",
	ObsInfo:                     "Observability information",
	ObsTimings:                  "Timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
