package input

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.fiblab.net/general/common/v2/mongoutil"
	"github.com/Takshsingh313/UrbanFlow/utils/config"
	"github.com/Takshsingh313/UrbanFlow/utils/layout"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/yaml.v2"
)

const downloadTimeout = 30 * time.Second

// Init 下载布局数据
// 功能：根据配置加载路网布局文档，失败时panic
// 参数：c-配置对象
// 返回：布局文档；未配置文件与数据库时返回nil，由内置生成器构建路网
func Init(c config.Config) *layout.Document {
	doc, err := Load(context.Background(), c)
	if err != nil {
		log.Panicf("failed to load layout: %v", err)
	}
	return doc
}

// Load 加载布局数据
// 功能：按 文件 > MongoDB 的优先级读取布局文档
// 参数：ctx-上下文，c-配置对象
// 返回：布局文档（可能为nil）与错误
// 算法说明：
// 1. 配置了File：.json后缀按JSON解析，其余按YAML解析
// 2. 配置了URI与DB/Col：连接MongoDB，按name筛选（为空则取第一条）
// 3. 都未配置：返回nil
func Load(ctx context.Context, c config.Config) (*layout.Document, error) {
	path := c.Input.Layout
	switch {
	case path.File != "":
		return LoadFile(path.File)
	case c.Input.URI != "" && path.DB != "" && path.Col != "":
		client := mongoutil.NewClient(c.Input.URI)
		defer client.Disconnect(context.Background())
		return LoadMongo(ctx, client, path)
	default:
		return nil, nil
	}
}

// LoadFile 从文件读取布局文档
func LoadFile(file string) (*layout.Document, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "read layout file %s", file)
	}
	var doc layout.Document
	if strings.EqualFold(filepath.Ext(file), ".json") {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse layout file %s", file)
	}
	log.Infof("load layout %q from %s: %d intersections, %d roads",
		doc.Name, file, len(doc.Intersections), len(doc.Roads))
	return &doc, nil
}

// LoadMongo 从MongoDB读取布局文档
// 说明：每条记录即一个完整的布局文档
func LoadMongo(ctx context.Context, client *mongo.Client, path config.InputPath) (*layout.Document, error) {
	coll := mongoutil.GetMongoColl(client, path)
	filter := bson.M{}
	if path.Name != "" {
		filter = bson.M{"name": path.Name}
	}
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	log.Infof("start fetching from %s.%s", path.DB, path.Col)
	var doc layout.Document
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, errors.Wrapf(err, "fetch layout %q from %s.%s", path.Name, path.DB, path.Col)
	}
	log.Infof("finish fetching from %s.%s", path.DB, path.Col)
	return &doc, nil
}
