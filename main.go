package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Rupavathi1225/teja-starin-hub/pkg/cache"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/configuration"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/db"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/handlers"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/server"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/tracking"
)

func main() {

	// загружаем переменные окружения
	if err := godotenv.Load(); err != nil {
		fmt.Printf("ошибка загрузки .env файла: %v\n", err)
	}

	// читаем конфигурацию
	cfg := configuration.Read()

	// подключаем основную базу данных
	if err := db.ConnectDB(&cfg.DB); err != nil {
		fmt.Printf("ошибка вызова db.ConnectDB: %v\n", err)
		return
	}
	defer db.CloseDB()

	// подключаем базу второго проекта - без неё сервис тоже живёт,
	// недоступны будут только mingle-роуты админки
	if err := db.ConnectMingleDB(&cfg.MingleDB); err != nil {
		fmt.Printf("база mingle отвалилась, ошибка вызова db.ConnectMingleDB: %v\n", err)
	}
	defer db.CloseMingleDB()

	// инициализируем кэш
	if err := cache.InitRedis(&cfg.Cache); err != nil {
		fmt.Printf("кэш отвалился, ошибка вызова cache.InitRedis: %v\n", err)
	}

	// настраиваем трекинг и обработчики
	tracking.Configure(&cfg.Tracking)
	handlers.Setup(cfg)

	// создаем контекст для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// запускаем сервер
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		if err := server.Run(ctx, cfg); err != nil && err != http.ErrServerClosed {
			log.Printf("ошибка запуска сервера: %v\n", err)
			stop() // отправляем сигнал завершения
		}
	}()

	// ожидаем сигнал завершения
	<-ctx.Done()

	// ждем завершения сервера
	wg.Wait()

	log.Println("Приложение корректно завершено")
}
