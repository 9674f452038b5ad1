package dialect

import "fmt"

// Kind represents a language a source unit may resemble.
type Kind uint8

const (
	Unknown Kind = iota
	Perl
	Python
	Shell
	Ruby

	kindCount
)

func (k Kind) String() string {
	switch k {
	case Perl:
		return "perl"
	case Python:
		return "python"
	case Shell:
		return "shell"
	case Ruby:
		return "ruby"
	default:
		return "unknown"
	}
}

func (k Kind) GoString() string {
	return fmt.Sprintf("dialect.Kind(%s)", k.String())
}
