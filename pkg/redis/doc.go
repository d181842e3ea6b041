// Package redis connects to a Redis server and exposes it as a kvstore.Store,
// letting several storefront clients (for example a fleet of kiosks) keep
// their session tokens and carts in one shared place.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	store := redis.NewStore(client, cfg.KeyPrefix)
//
// Connect retries the initial ping according to Config. Healthcheck returns a
// check suitable for readiness gates and backs Store.Ping. Sentinel errors
// wrap the go-redis errors with errors.Join.
package redis
