package env

// TypeBinding is the compiler's view of a resolved type.
type TypeBinding interface {
	Key() string
	// BinaryName is set for declared types only ("java.util.Map$Entry").
	BinaryName() string
	// Name is the simple name; primitive keyword for primitives.
	Name() string
	IsPrimitive() bool
	IsArray() bool
	Dimensions() int
	// ElementType is the leaf component of an array.
	ElementType() TypeBinding
	IsTypeVariable() bool
	IsParameterized() bool
	Erasure() TypeBinding
	// DeclaringType is the type declaring a type variable, or the enclosing
	// type of a nested type. Nil otherwise.
	DeclaringType() TypeBinding
	// DeclaringMethod is the method declaring a type variable, if any.
	DeclaringMethod() MethodBinding
	Bounds() []TypeBinding
}

// MethodBinding is the compiler's view of a resolved method.
type MethodBinding interface {
	// Key has the form "Lowner;.name(params)ret".
	Key() string
	Name() string
	IsConstructor() bool
	DeclaringClass() TypeBinding
	// MethodDeclaration is the generic declaration of a parameterized method.
	MethodDeclaration() MethodBinding
	ParameterTypes() []TypeBinding
	ReturnType() TypeBinding
}

// VariableBinding is the compiler's view of a field, local or parameter.
type VariableBinding interface {
	Name() string
	Type() TypeBinding
}
