package entity

// ActorContext carries the authenticated actor's identity into every core
// operation. It is supplied by the surrounding API layer; the engine never
// reads identity from ambient state.
type ActorContext struct {
	ID string `json:"id"`
}
