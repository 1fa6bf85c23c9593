package decor

// DefaultDescribeArgs returns the describe arguments used when the caller
// supplies none: always produce output even with no tags, and mark a
// modified working tree.
func DefaultDescribeArgs() []string {
	return []string{"--always", "--dirty=-modified"}
}

// Options captures the version-derivation settings for one resolution call.
// The zero value means default describe arguments, no decoration, and no
// fallback. Options are read-only during aggregation.
type Options struct {
	DescribeArgs []string
	Prefix       string
	Suffix       string
	// Fallback, when non-nil, is substituted verbatim for a failed
	// derivation. An empty-string fallback is a valid configuration and is
	// distinct from no fallback at all.
	Fallback *string
}

// Args returns the effective describe argument list.
func (o Options) Args() []string {
	if len(o.DescribeArgs) == 0 {
		return DefaultDescribeArgs()
	}
	return o.DescribeArgs
}

// Decorate wraps a raw version string in the configured prefix and suffix.
// It is never applied to a fallback value.
func (o Options) Decorate(raw string) string {
	return o.Prefix + raw + o.Suffix
}

// HasFallback reports whether a fallback value is configured.
func (o Options) HasFallback() bool {
	return o.Fallback != nil
}

// FallbackValue returns the configured fallback, or "" when none is set.
func (o Options) FallbackValue() string {
	if o.Fallback == nil {
		return ""
	}
	return *o.Fallback
}

// WithFallback returns a copy of the options with the fallback set.
func (o Options) WithFallback(value string) Options {
	o.Fallback = &value
	return o
}
