package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"infrawatch/backend/internal/model"
	"infrawatch/backend/internal/repository"
	apperrors "infrawatch/backend/pkg/errors"
)

// userCmd 管理 auth.directory=database 时使用的 users 表
func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "管理数据库身份目录中的账户",
	}
	cmd.AddCommand(userCreateCmd())
	cmd.AddCommand(userPasswdCmd())
	return cmd
}

func userCreateCmd() *cobra.Command {
	var id, email, password, name, role, department string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "创建账户",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := model.Role(role)
			if !r.Valid() {
				return fmt.Errorf("无效角色: %s（可选 citizen, official）", role)
			}
			if strings.TrimSpace(email) == "" || password == "" {
				return fmt.Errorf("--email 与 --password 不能为空")
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("计算密码哈希失败: %w", err)
			}
			if id == "" {
				id = uuid.New().String()
			}

			user := &model.User{
				ID:           id,
				Email:        strings.TrimSpace(email),
				PasswordHash: string(hash),
				Name:         name,
				Role:         r,
			}
			if department != "" {
				user.Department = &department
			}

			return withRepository(func(repo *repository.Repository) error {
				if err := repo.User.Create(context.Background(), user); err != nil {
					if apperrors.IsUniqueViolation(err) {
						return fmt.Errorf("账户已存在: %s", user.Email)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "已创建账户 %s (%s, %s)\n", user.Email, user.ID, user.Role)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "账户 ID（默认生成 UUID）")
	cmd.Flags().StringVar(&email, "email", "", "登录邮箱")
	cmd.Flags().StringVar(&password, "password", "", "登录密码")
	cmd.Flags().StringVar(&name, "name", "", "显示名称")
	cmd.Flags().StringVar(&role, "role", string(model.RoleCitizen), "角色 citizen | official")
	cmd.Flags().StringVar(&department, "department", "", "所属部门（官员可选）")
	return cmd
}

func userPasswdCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "重置账户密码",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return fmt.Errorf("--email 与 --password 不能为空")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("计算密码哈希失败: %w", err)
			}

			return withRepository(func(repo *repository.Repository) error {
				ctx := context.Background()
				user, err := repo.User.GetByEmail(ctx, email)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("账户不存在: %s", email)
					}
					return err
				}
				if err := repo.User.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "已更新 %s 的密码\n", email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "登录邮箱")
	cmd.Flags().StringVar(&password, "password", "", "新密码")
	return cmd
}

// hashPasswordCmd 输出 bcrypt 哈希，便于手工写入 users 表
func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "计算 bcrypt 密码哈希",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
}

func withRepository(fn func(repo *repository.Repository) error) error {
	_, logger, stores, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer stores.Close()

	return fn(repository.NewRepository(stores))
}
