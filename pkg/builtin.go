package kaleido

// libm lists the C math functions whose signatures only use doubles.
var libm = []*Prototype{
	{Name: "sin", Params: []string{"x"}},
	{Name: "cos", Params: []string{"x"}},
	{Name: "sqrt", Params: []string{"x"}},
	{Name: "exp", Params: []string{"x"}},
	{Name: "log", Params: []string{"x"}},
	{Name: "pow", Params: []string{"x", "y"}},
}

// DefineBuiltins declares the libm prelude as externs.
func DefineBuiltins(g *Generator) error {
	for _, proto := range libm {
		if _, err := g.Prototype(proto); err != nil {
			return err
		}
	}

	return nil
}
