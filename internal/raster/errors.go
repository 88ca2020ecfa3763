package raster

import "errors"

var (
	ErrDecode                   = errors.New("decode failure")
	ErrAllocation               = errors.New("allocation failure")
	ErrUnsupportedChannelLayout = errors.New("unsupported channel layout")
	ErrEncode                   = errors.New("encode failure")
	ErrInvalidBuffer            = errors.New("invalid pixel buffer")
	ErrInvalidParameter         = errors.New("invalid parameter")
)

// Kind classifies an error returned anywhere in the engine or its codecs.
type Kind int

const (
	KindUnknown Kind = iota
	KindDecode
	KindAllocation
	KindUnsupportedChannels
	KindEncode
	KindInvalidInput
)

// KindOf maps a (possibly wrapped) error to its Kind.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrDecode):
		return KindDecode
	case errors.Is(err, ErrAllocation):
		return KindAllocation
	case errors.Is(err, ErrUnsupportedChannelLayout):
		return KindUnsupportedChannels
	case errors.Is(err, ErrEncode):
		return KindEncode
	case errors.Is(err, ErrInvalidBuffer), errors.Is(err, ErrInvalidParameter):
		return KindInvalidInput
	default:
		return KindUnknown
	}
}

// ExitCode returns the process exit status for the kind. Unknown errors
// (usage, I/O, configuration) exit with 1.
func (k Kind) ExitCode() int {
	switch k {
	case KindDecode:
		return 2
	case KindAllocation:
		return 3
	case KindUnsupportedChannels:
		return 4
	case KindEncode:
		return 5
	case KindInvalidInput:
		return 6
	default:
		return 1
	}
}

func (k Kind) String() string {
	switch k {
	case KindDecode:
		return "decode"
	case KindAllocation:
		return "allocation"
	case KindUnsupportedChannels:
		return "unsupported-channels"
	case KindEncode:
		return "encode"
	case KindInvalidInput:
		return "invalid-input"
	default:
		return "unknown"
	}
}
