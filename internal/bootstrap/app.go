package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/NicoPonziani/ExcelUtility/internal/config"
	"github.com/NicoPonziani/ExcelUtility/internal/database"
	"github.com/NicoPonziani/ExcelUtility/internal/handler"
	"github.com/NicoPonziani/ExcelUtility/internal/logger"
	"github.com/NicoPonziani/ExcelUtility/internal/repository"
	"github.com/NicoPonziani/ExcelUtility/internal/service"
	"github.com/NicoPonziani/ExcelUtility/pkg/exceltab"
)

type App struct {
	Echo *echo.Echo
	DB   *sql.DB
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}

	logger.InitLogging(config.DefaultEnvConfig.LOG_FILE_PATH)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	dbConfig := database.Config{
		Host:            config.DefaultEnvConfig.DB_HOST,
		Port:            config.DefaultEnvConfig.DB_PORT,
		User:            config.DefaultEnvConfig.DB_USER,
		Password:        config.DefaultEnvConfig.DB_PASSWORD,
		DBName:          config.DefaultEnvConfig.DB_NAME,
		SSLMode:         config.DefaultEnvConfig.DB_SSL_MODE,
		MaxOpenConns:    config.DefaultEnvConfig.DB_MAX_OPEN_CONNS,
		MaxIdleConns:    config.DefaultEnvConfig.DB_MAX_IDLE_CONNS,
		ConnMaxLifetime: config.DefaultEnvConfig.DB_CONN_MAX_LIFETIME,
	}
	db, err := database.NewPostgresDB(ctx, dbConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.DB = db

	exportOpts := exceltab.Options{
		FontName:    config.DefaultEnvConfig.EXPORT_FONT_NAME,
		HeaderColor: config.DefaultEnvConfig.EXPORT_HEADER_COLOR,
		FreezeRows:  2,
	}

	repo := repository.NewExpenseRepository(db)
	svc := service.NewReportService(repo, exportOpts, config.DefaultEnvConfig.EXPORT_COMPANY_NAME)
	reportHandler := handler.NewReportHandler(svc)

	a.RegisterMiddlewares()
	a.RegisterRoutes(reportHandler)
	return nil
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

func (a *App) RegisterRoutes(reportHandler *handler.ReportHandler) {
	reports := a.Echo.Group("/reports")
	reports.GET("/expenses.xlsx", reportHandler.ExportWorkbookHandler)
	reports.GET("/expenses/template.xlsx", reportHandler.ExportTemplateHandler)
	reports.GET("/expenses.csv", reportHandler.ExportCSVHandler)

	a.Echo.POST("/imports/expenses", reportHandler.ImportHandler)
}

func (a *App) Run() error {
	defer a.DB.Close()
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}
