// Package modules bundles the standard library modules and installs
// them into a resolver.
package modules

import (
	"github.com/hazel-lang/hazel"
	"github.com/hazel-lang/hazel/modules/hashmod"
	"github.com/hazel-lang/hazel/modules/iomod"
	"github.com/hazel-lang/hazel/modules/jsonmod"
	"github.com/hazel-lang/hazel/modules/mathmod"
	"github.com/hazel-lang/hazel/modules/netmod"
	"github.com/hazel-lang/hazel/modules/osmod"
	"github.com/hazel-lang/hazel/modules/randmod"
	"github.com/hazel-lang/hazel/modules/remod"
	"github.com/hazel-lang/hazel/modules/textmod"
	"github.com/hazel-lang/hazel/modules/timemod"
)

// Install registers every standard library module as a builtin on the
// resolver.
func Install(r *hazel.Resolver) {
	r.RegisterBuiltin(mathmod.Module())
	r.RegisterBuiltin(textmod.Module())
	r.RegisterBuiltin(timemod.Module())
	r.RegisterBuiltin(jsonmod.Module())
	r.RegisterBuiltin(randmod.Module())
	r.RegisterBuiltin(hashmod.Module())
	r.RegisterBuiltin(iomod.Module())
	r.RegisterBuiltin(osmod.Module())
	r.RegisterBuiltin(remod.Module())
	r.RegisterBuiltin(netmod.Module())
}
