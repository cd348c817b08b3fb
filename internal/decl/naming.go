package decl

// Naming are the compilation options that shape a unit's declarations.
type Naming struct {
	// ImplicitContainer names the type holding top-level statements ("Program").
	ImplicitContainer string
	// ScriptClass names the type holding a script submission ("Script").
	ScriptClass string
	// Script puts top-level statements into ScriptClass instead of ImplicitContainer.
	Script bool
}

const (
	DefaultImplicitContainer = "Program"
	DefaultScriptClass       = "Script"
	// SynthesizedMainName is the entry point generated for top-level statements.
	SynthesizedMainName = "<Main>$"
)

func (n Naming) normalized() Naming {
	if n.ImplicitContainer == "" {
		n.ImplicitContainer = DefaultImplicitContainer
	}
	if n.ScriptClass == "" {
		n.ScriptClass = DefaultScriptClass
	}
	return n
}

// ContainerName is the type name top-level statements are placed in.
func (n Naming) ContainerName() string {
	n = n.normalized()
	if n.Script {
		return n.ScriptClass
	}
	return n.ImplicitContainer
}
