package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"task-manager/internal/auth"
	"task-manager/internal/config"
	"task-manager/internal/httpapi"
	"task-manager/internal/repository"
	"task-manager/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	files, err := service.NewFileStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("file store: %v", err)
	}

	employeeRepo := repository.NewEmployeeRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	subtaskRepo := repository.NewSubtaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	employeeSvc := service.NewEmployeeService(employeeRepo, tokens)
	taskSvc := service.NewTaskService(db, taskRepo, subtaskRepo, commentRepo, employeeRepo, files)
	subtaskSvc := service.NewSubtaskService(db, subtaskRepo, taskRepo, commentRepo, files)
	commentSvc := service.NewCommentService(db, commentRepo, taskRepo, subtaskRepo, employeeRepo)

	server := httpapi.NewServer(employeeSvc, taskSvc, subtaskSvc, commentSvc, files, tokens, employeeRepo)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.Routes(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("Server is listening on port %s...", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
