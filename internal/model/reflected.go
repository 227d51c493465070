package model

// FromIntrospection resolves name and builds a Function from the runtime's
// metadata. A resolution failure is recorded in ReflectionErr and the
// partially built model, named as requested, is returned.
func FromIntrospection(in Introspector, name string) *Function {
	f := &Function{Name: name, Parameters: []Parameter{}}

	handle, err := in.Resolve(name)
	if err != nil {
		f.record(CheckReflection, err)
		return f
	}

	f.fillFromHandle(handle)
	f.record(CheckReflection, nil)
	return f
}

// FromHandle builds a Function from an already resolved handle.
func FromHandle(handle IntrospectedFunction) *Function {
	f := &Function{Parameters: []Parameter{}}
	f.fillFromHandle(handle)
	f.record(CheckReflection, nil)
	return f
}

func (f *Function) fillFromHandle(handle IntrospectedFunction) {
	f.Name = handle.Name()
	f.Deprecated = TristateOf(handle.IsDeprecated())
	for _, p := range handle.Parameters() {
		f.Parameters = append(f.Parameters, parameterFromIntrospection(p))
	}
}

func parameterFromIntrospection(p IntrospectedParameter) Parameter {
	return Parameter{
		Name:              p.Name(),
		Type:              p.Type(),
		Optional:          p.IsOptional(),
		Variadic:          p.IsVariadic(),
		PassedByReference: p.IsPassedByReference(),
		DefaultValue:      p.DefaultValue(),
	}
}
