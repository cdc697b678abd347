package main

import (
	"encoding/base64"
	"flag"
	"os"

	"git.fiblab.net/sim/syncer/v3"
	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/Takshsingh313/UrbanFlow/task"
	"github.com/Takshsingh313/UrbanFlow/utils/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

var (
	// syncer地址，为空时单机运行，仅对外提供websocket与本地RPC
	syncerAddr = flag.String("syncer", "", "syncer address (empty means standalone mode), e.g. http://localhost:53001")
	job        = flag.String("job", "job0", "the name of the whole simulation task")
	grpcAddr   = flag.String("listen", ":51102", "gRPC listening address")
	// 覆盖配置中的server.ws_listen
	wsAddr     = flag.String("ws", "", "websocket listening address, overrides server.ws_listen")
	configPath = flag.String("config", "", "config file path")
	configData = flag.String("config-data", "", "config file base64 encoded data")
	logLevel   = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}

	log = logrus.WithField("module", "urbanflow")
)

func setupLog() {
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	level, ok := logLevels[*logLevel]
	if !ok {
		log.Panicf("log.level must be one of %v", logLevels)
	}
	logrus.SetLevel(level)
}

// readConfig 读取配置原文，文件优先于base64数据，均未指定时返回nil
func readConfig() []byte {
	switch {
	case *configPath != "":
		data, err := os.ReadFile(*configPath)
		if err != nil {
			log.Panicf("config file load err: %v", err)
		}
		return data
	case *configData != "":
		data, err := base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Panicf("config data load err: %v", err)
		}
		return data
	}
	log.Warn("no config file or config data, use default config")
	return nil
}

// loadConfig 在默认配置（4x4方格路网）之上叠加配置文件与命令行覆盖项
func loadConfig() config.Config {
	c := config.Default()
	if err := yaml.UnmarshalStrict(readConfig(), &c); err != nil {
		log.Panicf("config parse err: %v", err)
	}
	if *wsAddr != "" {
		c.Server.WSListen = *wsAddr
	}
	return c
}

func main() {
	flag.Parse()
	setupLog()
	c := loadConfig()
	log.Infof("%+v", c)

	sidecar := syncer.NewSidecar(task.SelfName, *grpcAddr, *syncerAddr)
	task.NewContext(*job, c, sidecar, true).Run()
}
