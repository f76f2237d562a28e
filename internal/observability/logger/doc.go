// Package logger expone el logger Zap de la tienda con scoping por contexto.
//
// # Decisiones
//
//   - Singleton: una sola instancia global inicializada con Init() desde cmd/tienda.
//   - Context scoping: cada request web lleva un logger con request_id y session_id
//     sin crear un core nuevo.
//   - Entornos: "dev" escribe consola con colores, "prod" escribe JSON.
//   - La CLI inicializa con nivel "warn" salvo --verbose, para no ensuciar las tablas.
//
// # Uso
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
//	log := logger.From(ctx)
//	log.Debug("api call", logger.Resource("/productos"), logger.Status(200))
package logger
