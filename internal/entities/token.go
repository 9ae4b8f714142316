package entities

// Token is an actor placed on a scene. Linked tokens share the world actor;
// unlinked tokens point at their own synthetic actor.
type Token struct {
	ID      string `json:"id"`
	SceneID string `json:"scene_id"`
	Name    string `json:"name"`
	ActorID string `json:"actor_id"`
	Linked  bool   `json:"linked"`

	// Actor is loaded by the document layer
	Actor *Actor `json:"-"`
}

// UUID returns the token's address
func (t *Token) UUID() Address {
	return TokenAddress(t.SceneID, t.ID)
}

func (t *Token) canonicalActor() *Actor { return t.Actor }

// ActorSource is anything that stands in for an actor: the actor itself or a token on a scene
type ActorSource interface {
	canonicalActor() *Actor
}

// ResolveActor returns the actor behind a token or actor, or nil
func ResolveActor(src ActorSource) *Actor {
	if src == nil {
		return nil
	}
	switch v := src.(type) {
	case *Actor:
		if v == nil {
			return nil
		}
	case *Token:
		if v == nil {
			return nil
		}
	}
	return src.canonicalActor()
}
