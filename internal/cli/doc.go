// Package cli parses wsgen's thin command-line surface.
//
// wsgen's own flags come before the subcommand. From the subcommand onward,
// arguments belong to the underlying build tool and are passed through
// verbatim; only a bounded set of package-selection flags is additionally
// recognized (not consumed) so the generation phase can be narrowed to the
// packages the build actually covers.
package cli
