package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Rupavathi1225/teja-starin-hub/pkg/auth"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/configuration"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/handlers"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/metrics"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/shutdown"
)

// Run запускает сервер и блокируется до graceful shutdown
func Run(ctx context.Context, cfg *configuration.Config) error {

	r := NewRouter(cfg)

	// создаем экземпляр сервера
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%v", cfg.Server.Port),
		Handler: r,
	}

	// горутина для graceful shutdown
	go func() {

		// ждём сигнала отмены
		<-ctx.Done()
		log.Println("Получен сигнал завершения, начинаем graceful shutdown...")

		// переключаем флаг - мутации в обработчиках начнут отклоняться
		shutdown.StartShutdown()
		log.Println("Приложение помечено как останавливающееся")

		// останавливаем сервер (до окончания текущего соединения или 30 секунд)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Ошибка при остановке сервера: %v\n", err)
		} else {
			log.Println("Сервер корректно остановлен")
		}
	}()

	// запускаем сервер (блокирующий вызов)
	log.Printf("Запуск сервера на порту %s", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("ошибка сервера: %w", err)
	}

	return nil
}

// NewRouter собирает все роуты сервиса (отдельно от Run, чтобы
// тесты могли поднять httptest-сервер на том же роутере)
func NewRouter(cfg *configuration.Config) *chi.Mux {

	r := chi.NewRouter()

	r.Use(metrics.Middleware)

	// метрики прометеуса
	r.Handle("/metrics", metrics.Handler())

	// основной контент (фронт)
	mainFiles := http.FileServer(http.Dir("web"))
	r.Handle("/", mainFiles)

	// публичные роуты
	r.Get("/api/blogs", handlers.GetBlogs)
	r.Get("/api/blogs/{slug}", handlers.GetBlogBySlug)
	r.Get("/api/categories", handlers.GetCategories)
	r.Get("/api/search/{search_id}", handlers.GetSearch)
	r.Post("/api/search/{search_id}/related-click", handlers.PostRelatedClick)
	r.Post("/api/search/{search_id}/visit", handlers.PostVisit)
	r.Post("/api/search/{search_id}/click", handlers.PostResultClick)
	r.Get("/api/prelanding/{search_id}", handlers.GetPreLanding)
	r.Post("/api/prelanding/{search_id}/email", handlers.PostEmail)
	r.Get("/go", handlers.Redirect)

	// админка: вход открыт, всё остальное под JWT
	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", handlers.PostLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(&cfg.Auth))

			r.Get("/blogs", handlers.AdminGetBlogs)
			r.Post("/blogs", handlers.AdminPostBlog)
			r.Put("/blogs/{id}", handlers.AdminPutBlog)
			r.Delete("/blogs/{id}", handlers.AdminDeleteBlog)

			r.Get("/categories", handlers.GetCategories)
			r.Post("/categories", handlers.AdminPostCategory)
			r.Put("/categories/{id}", handlers.AdminPutCategory)
			r.Delete("/categories/{id}", handlers.AdminDeleteCategory)

			r.Get("/searches", handlers.AdminGetSearches)
			r.Post("/searches", handlers.AdminPostSearch)
			r.Put("/searches/{id}", handlers.AdminPutSearch)
			r.Delete("/searches/{id}", handlers.AdminDeleteSearch)

			r.Get("/results", handlers.AdminGetResults)
			r.Post("/results", handlers.AdminPostResult)
			r.Put("/results/{id}", handlers.AdminPutResult)
			r.Delete("/results/{id}", handlers.AdminDeleteResult)

			r.Get("/prelanding/{search_id}", handlers.AdminGetPreLanding)
			r.Put("/prelanding/{search_id}", handlers.AdminPutPreLanding)

			r.Get("/emails", handlers.AdminGetEmails)
			r.Get("/analytics", handlers.AdminGetAnalytics)

			// второй проект
			r.Route("/mingle", func(r chi.Router) {
				r.Get("/searches", handlers.MingleGetSearches)
				r.Post("/searches", handlers.MinglePostSearch)
				r.Put("/searches/{id}", handlers.MinglePutSearch)
				r.Delete("/searches/{id}", handlers.MingleDeleteSearch)

				r.Get("/results", handlers.MingleGetResults)
				r.Post("/results", handlers.MinglePostResult)
				r.Put("/results/{id}", handlers.MinglePutResult)
				r.Delete("/results/{id}", handlers.MingleDeleteResult)

				r.Get("/prelanding/{key}", handlers.MingleGetPreLanding)
				r.Put("/prelanding/{key}", handlers.MinglePutPreLanding)

				r.Get("/pages", handlers.MingleGetPages)
				r.Post("/pages", handlers.MinglePostPage)
				r.Put("/pages/{id}", handlers.MinglePutPage)
				r.Delete("/pages/{id}", handlers.MingleDeletePage)

				r.Get("/analytics", handlers.MingleGetAnalytics)
			})
		})
	})

	return r
}
