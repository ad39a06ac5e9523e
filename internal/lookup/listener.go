package lookup

// Listener observes lookup progress. Callbacks run on the main loop.
type Listener interface {
	LookupStarted(query string)
	LookupCanceled(query string)
	LookupFinished(query string)
}

// ListenerFuncs adapts optional funcs to Listener. Register it by pointer.
type ListenerFuncs struct {
	Started  func(query string)
	Canceled func(query string)
	Finished func(query string)
}

func (f *ListenerFuncs) LookupStarted(q string) {
	if f.Started != nil {
		f.Started(q)
	}
}

func (f *ListenerFuncs) LookupCanceled(q string) {
	if f.Canceled != nil {
		f.Canceled(q)
	}
}

func (f *ListenerFuncs) LookupFinished(q string) {
	if f.Finished != nil {
		f.Finished(q)
	}
}
