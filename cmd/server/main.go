package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ellisandco/gin-rummy/internal/config"
	"github.com/ellisandco/gin-rummy/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	graceful := flag.Bool("graceful", false, "收到退出信号时等待对局结束")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("加载配置文件失败，使用默认配置: %v", err)
		cfg = config.Default()
	}

	// 创建服务器
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("创建服务器失败: %v", err)
	}

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("正在关闭服务器...")
		if *graceful {
			srv.GracefulShutdown(cfg.Game.ShutdownTimeoutDuration())
		} else {
			srv.Shutdown()
		}
		os.Exit(0)
	}()

	// 启动服务器
	log.Println("🎮 Gin Rummy 服务器启动中...")
	if err := srv.Start(); err != nil {
		log.Fatalf("服务器启动失败: %v", err)
	}
}
