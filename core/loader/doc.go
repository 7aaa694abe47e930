// Package loader registers features and mounts their routes.
//
// Each feature implements Feature; the Manager loads the enabled ones in
// registration order:
//
//	mgr := loader.NewManager()
//	mgr.Register(tlf.NewFeature(svc, logger))
//	mgr.Register(integrity.NewFeature(svc, logger))
//	err := mgr.LoadAll(app)
package loader
